package submission

// AssessmentName is the fixed name the backend expects on every submission.
const AssessmentName = "AI-Driven Talent Mapping"

// Payload is the submission wire record. Field names and order are the
// backend contract.
type Payload struct {
	RIASEC         RIASEC `json:"riasec"`
	OCEAN          OCEAN  `json:"ocean"`
	VIAIS          VIAIS  `json:"viaIs"`
	AssessmentName string `json:"assessmentName"`
}

// RIASEC holds the six interest scores.
type RIASEC struct {
	Realistic     int `json:"realistic"`
	Investigative int `json:"investigative"`
	Artistic      int `json:"artistic"`
	Social        int `json:"social"`
	Enterprising  int `json:"enterprising"`
	Conventional  int `json:"conventional"`
}

// OCEAN holds the five personality factor scores.
type OCEAN struct {
	Openness          int `json:"openness"`
	Conscientiousness int `json:"conscientiousness"`
	Extraversion      int `json:"extraversion"`
	Agreeableness     int `json:"agreeableness"`
	Neuroticism       int `json:"neuroticism"`
}

// VIAIS holds the 24 character strength scores.
type VIAIS struct {
	Creativity     int `json:"creativity"`
	Curiosity      int `json:"curiosity"`
	Judgment       int `json:"judgment"`
	LoveOfLearning int `json:"loveOfLearning"`
	Perspective    int `json:"perspective"`

	Bravery      int `json:"bravery"`
	Perseverance int `json:"perseverance"`
	Honesty      int `json:"honesty"`
	Zest         int `json:"zest"`

	Love               int `json:"love"`
	Kindness           int `json:"kindness"`
	SocialIntelligence int `json:"socialIntelligence"`

	Teamwork   int `json:"teamwork"`
	Fairness   int `json:"fairness"`
	Leadership int `json:"leadership"`

	Forgiveness    int `json:"forgiveness"`
	Humility       int `json:"humility"`
	Prudence       int `json:"prudence"`
	SelfRegulation int `json:"selfRegulation"`

	AppreciationOfBeauty int `json:"appreciationOfBeauty"`
	Gratitude            int `json:"gratitude"`
	Hope                 int `json:"hope"`
	Humor                int `json:"humor"`
	Spirituality         int `json:"spirituality"`
}

// slot addresses one score field by its wire name.
type slot struct {
	name string
	ptr  *int
}

func (r *RIASEC) slots() []slot {
	return []slot{
		{"realistic", &r.Realistic},
		{"investigative", &r.Investigative},
		{"artistic", &r.Artistic},
		{"social", &r.Social},
		{"enterprising", &r.Enterprising},
		{"conventional", &r.Conventional},
	}
}

func (o *OCEAN) slots() []slot {
	return []slot{
		{"openness", &o.Openness},
		{"conscientiousness", &o.Conscientiousness},
		{"extraversion", &o.Extraversion},
		{"agreeableness", &o.Agreeableness},
		{"neuroticism", &o.Neuroticism},
	}
}

func (v *VIAIS) slots() []slot {
	return []slot{
		{"creativity", &v.Creativity},
		{"curiosity", &v.Curiosity},
		{"judgment", &v.Judgment},
		{"loveOfLearning", &v.LoveOfLearning},
		{"perspective", &v.Perspective},
		{"bravery", &v.Bravery},
		{"perseverance", &v.Perseverance},
		{"honesty", &v.Honesty},
		{"zest", &v.Zest},
		{"love", &v.Love},
		{"kindness", &v.Kindness},
		{"socialIntelligence", &v.SocialIntelligence},
		{"teamwork", &v.Teamwork},
		{"fairness", &v.Fairness},
		{"leadership", &v.Leadership},
		{"forgiveness", &v.Forgiveness},
		{"humility", &v.Humility},
		{"prudence", &v.Prudence},
		{"selfRegulation", &v.SelfRegulation},
		{"appreciationOfBeauty", &v.AppreciationOfBeauty},
		{"gratitude", &v.Gratitude},
		{"hope", &v.Hope},
		{"humor", &v.Humor},
		{"spirituality", &v.Spirituality},
	}
}

// Fields flattens p into wire paths and values, e.g. "viaIs.hope".
func (p *Payload) Fields() map[string]int {
	out := make(map[string]int, 35)
	for _, s := range p.RIASEC.slots() {
		out["riasec."+s.name] = *s.ptr
	}
	for _, s := range p.OCEAN.slots() {
		out["ocean."+s.name] = *s.ptr
	}
	for _, s := range p.VIAIS.slots() {
		out["viaIs."+s.name] = *s.ptr
	}
	return out
}
