// Package display renders assessment state for the terminal.
//
// All renderers take an io.Writer. Color is applied only when the writer is
// a TTY and NO_COLOR is unset:
//
//	p := display.NewPrinter(os.Stdout)
//	p.Page(sess)
//	p.Status(sess)
//
// Warnings group a title, an optional message, related items and a
// suggestion:
//
//	display.Warning{
//	    Title:      "Assessment incomplete",
//	    Items:      []string{"ocean"},
//	    Suggestion: "Run 'talentmap take ocean' to finish it",
//	}.Display(os.Stderr)
package display
