package extract

import (
	"fmt"
	"strings"
)

// Mode selects the prompt template.
type Mode int

const (
	ModeFromURL Mode = iota
	ModeFromText
)

func (m Mode) String() string {
	switch m {
	case ModeFromURL:
		return "from_url"
	case ModeFromText:
		return "from_text"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// BuildPrompt returns the instruction sent to the completion service. input
// is embedded verbatim.
func BuildPrompt(mode Mode, input string) string {
	var tmpl string
	switch mode {
	case ModeFromURL:
		tmpl = urlPrompt
	default:
		tmpl = textPrompt
	}
	return strings.NewReplacer(
		"{{INPUT}}", input,
		"{{PRODUCT_SHAPE}}", productShape,
		"{{RULES}}", commonRules,
	).Replace(tmpl)
}

// withPageText appends fetched page contents to a from_url prompt.
func withPageText(prompt, pageText string) string {
	return prompt + "\nThe text content of the page at that url is:\n\n" +
		"```\n" + pageText + "\n```\n"
}

const productShape = `{"name": str, "description": str, "hs_code": str, "image_url": str,
 "location": {"name": str, "description": str, "country_code": str, "address": str},
 "weight_kg": float, "recycled_pct": float, "waste_pct": float, "lifetime_amount": float,
 "materials": list of product}`

const commonRules = `If any information of product, location, materials is missing, please guess suitable values.

Every object of materials must be a product object with the same structure, including its own location and materials.

Return only the JSON object, starting with "{" and ending with "}". Use double quotes for keys and strings. Do not add explanations or markdown code fences.`

const urlPrompt = `
Read the following url and extract the product details in JSON format from the following url:

{{INPUT}}

Expected JSON structure:
{{PRODUCT_SHAPE}}

{{RULES}}
`

const textPrompt = `
Extract the product details in JSON format from the following text:

{{INPUT}}

Expected JSON structure:
{{PRODUCT_SHAPE}}

{{RULES}}

If there is url inside provided text, please read that url and extract based on that read data.
`
