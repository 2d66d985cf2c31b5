// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// labelLexer tokenizes on-screen housing labels. "ward" and "plot" lex as
// keywords so a district name never swallows them.
var labelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i:ward|plot)\b`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z']*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[,:\-]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// housingLabel is the grammar for labels of the form
//
//	[ district ( "," | "-" | ":" ) ] "Ward" N [ [","] "Plot" M ]
type housingLabel struct {
	District []string `parser:"( @Ident+ ( ',' | '-' | ':' )? )?"`
	Ward     int      `parser:"'ward' @Int"`
	Plot     int      `parser:"( ','? 'plot' @Int )?"`
}

var labelParser = participle.MustBuild[housingLabel](
	participle.Lexer(labelLexer),
	participle.CaseInsensitive("Keyword"),
)

// Label is a parsed housing label. Plot is 0 when the label had none.
type Label struct {
	District string
	Ward     int
	Plot     int
}

// ParseLabel parses on-screen location text such as "Lavender Beds - Ward 3
// Plot 7" or "Ward 12".
func ParseLabel(text string) (Label, error) {
	parsed, err := labelParser.ParseString("", strings.TrimSpace(text))
	if err != nil {
		return Label{}, oops.With("label", text).Wrapf(err, "parse housing label")
	}
	if parsed.Ward < 1 {
		return Label{}, oops.With("label", text).Errorf("ward %d out of range", parsed.Ward)
	}
	if parsed.Plot < 0 {
		return Label{}, oops.With("label", text).Errorf("plot %d out of range", parsed.Plot)
	}
	return Label{
		District: strings.Join(parsed.District, " "),
		Ward:     parsed.Ward,
		Plot:     parsed.Plot,
	}, nil
}

// String formats the label back into canonical text.
func (l Label) String() string {
	var b strings.Builder
	if l.District != "" {
		b.WriteString(l.District)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "Ward %d", l.Ward)
	if l.Plot > 0 {
		fmt.Fprintf(&b, ", Plot %d", l.Plot)
	}
	return b.String()
}
