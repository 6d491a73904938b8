package pitch

import (
	"fmt"
	"strings"
	"time"

	"github.com/evoke-group/presales-cli/internal/model"
)

// ExportText renders a pitch as a downloadable plain-text document.
func ExportText(company string, p *model.Pitch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pitch: %s\n", company)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02"))

	b.WriteString("SHORT PITCH\n")
	b.WriteString(strings.Repeat("=", 11) + "\n")
	b.WriteString(p.Short + "\n\n")

	b.WriteString("LONG PITCH\n")
	b.WriteString(strings.Repeat("=", 10) + "\n")
	long := p.Long
	if long == "" && p.LongStructured != nil {
		long = RenderLong(p.LongStructured)
	}
	b.WriteString(long + "\n")

	return b.String()
}
