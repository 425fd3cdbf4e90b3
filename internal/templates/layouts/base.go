package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const baseStyles = `body{font-family:system-ui,sans-serif;margin:0;background:#f5f7f5;color:#1d2b1f}` +
	`header{background:#1f6f43;color:#fff;padding:0.75rem 1.5rem}` +
	`main{padding:1.5rem}` +
	`table.schedule{border-collapse:collapse;width:100%}` +
	`table.schedule th,table.schedule td{border:1px solid #cfd8cf;padding:0.35rem;text-align:center}` +
	`td.free{background:#e6f4ea}td.booked{background:#f4d6d6}td.mine{background:#cfe3ff}td.past{background:#eceeec;color:#8a948a}`

// Base wraps body in the shared page shell.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title><style>`+baseStyles+`</style></head><body>`+
			`<header><strong>`+templ.EscapeString(title)+`</strong></header><main>`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
