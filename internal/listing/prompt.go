package listing

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/MrSnakeDoc/moteur/internal/catalog"
)

// Field names of one generated item, in the order the model is asked for.
var requiredFields = []string{"carName", "price", "year", "mileage", "location", "source", "imageUrl"}

// BuildPrompt renders the instruction sent to the model for query.
func BuildPrompt(query string, c *catalog.Catalog) string {
	sources := quoteAll(c.SourceNames())

	var b strings.Builder
	b.WriteString("أنت محرك بحث مغربي متخصص في تجميع إعلانات السيارات من عدة مواقع.\n")
	fmt.Fprintf(&b, "ابحث عن إعلانات للسيارة التالية: %q.\n\n", query)
	fmt.Fprintf(&b, "قم بإرجاع قائمة من %d إلى %d نتيجة بحث.\n", c.MinResults, c.MaxResults)
	b.WriteString("يجب أن تكون النتائج متنوعة من حيث سنة الصنع، الكيلومتراج، والثمن لتعكس واقع السوق.\n")
	fmt.Fprintf(&b, "يجب أن تكون المصادر متنوعة بين %s.\n", strings.Join(sources, ", "))
	fmt.Fprintf(&b, "استخدم مدن مغربية مختلفة مثل %s.\n", strings.Join(c.Cities, "، "))
	fmt.Fprintf(&b, "لكل نتيجة، استخدم رابط صورة من %s.\n", c.ImageURL)
	if len(c.Examples) > 0 {
		b.WriteString("\n")
		for _, ex := range c.Examples {
			fmt.Fprintf(&b, "مثال للبحث: %q\n", ex)
		}
	}
	return b.String()
}

// ResponseSchema constrains the reply to an array of complete listings.
func ResponseSchema(c *catalog.Catalog) *genai.Schema {
	sources := c.SourceNames()

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"carName": {
					Type:        genai.TypeString,
					Description: "اسم السيارة، مثلا 'Dacia Duster 2022'",
				},
				"price": {
					Type:        genai.TypeNumber,
					Description: "ثمن السيارة بالدرهم المغربي",
				},
				"year": {
					Type:        genai.TypeInteger,
					Description: "سنة الصنع",
				},
				"mileage": {
					Type:        genai.TypeInteger,
					Description: "عدد الكيلومترات المقطوعة",
				},
				"location": {
					Type:        genai.TypeString,
					Description: "المدينة التي توجد بها السيارة",
				},
				"source": {
					Type:        genai.TypeString,
					Description: "الموقع الذي وجد فيه الإعلان، يجب أن يكون واحدا من: " + strings.Join(quoteAll(sources), ", "),
					Enum:        sources,
				},
				"imageUrl": {
					Type:        genai.TypeString,
					Description: "رابط صورة للسيارة. استخدم رابط من " + c.ImageURL,
				},
			},
			Required: append([]string(nil), requiredFields...),
		},
	}
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = "'" + s + "'"
	}
	return out
}
