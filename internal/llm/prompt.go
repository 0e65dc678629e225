package llm

import (
	"fmt"
	"unicode/utf8"

	"github.com/sells-group/coach-directory/internal/model"
)

// MaxPromptContent bounds the page content embedded in an extraction prompt.
const MaxPromptContent = 100000

// ExtractionSystemPrompt instructs the model to list every coach on a
// directory page as JSON.
const ExtractionSystemPrompt = `You are a data extraction assistant. You analyze HTML from collegiate coaching staff directory pages.

Rules:
1. Extract ALL coaches listed on the page, not just the head coach.
2. For each coach, capture whatever contact info is visible: email, phone, Twitter/X handle or URL.
3. Only extract information that is explicitly visible in the page. Do not guess or infer.
4. Include all coaching positions: head coach, assistant coach, associate coach, coordinator, director of operations.
5. Exclude trainers, medical staff, equipment managers and interns unless the title explicitly says "Coach".

Return a JSON object with a "coaches" key containing an array of objects.
Each object must have these exact keys: name, position, email, phone, twitter.
If a field is not found, use an empty string "".
Return at most 15 coaches.`

// ExtractionPrompt builds the user turn for one source page.
func ExtractionPrompt(sourceURL, content string) string {
	if len(content) > MaxPromptContent {
		cut := MaxPromptContent
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return fmt.Sprintf("Source URL: %s\n\nHTML Content:\n%s", sourceURL, content)
}

// VisitPrompt asks a search-backed model to read a page and list its staff
// as KEY: value blocks.
func VisitPrompt(sourceURL string) string {
	return fmt.Sprintf(`Visit %s and list every coach on the staff directory.

For each coach output one block in exactly this format, separated by a line containing ---:

NAME: <full name>
POSITION: <title as shown>
EMAIL: <email or empty>
PHONE: <phone or empty>
TWITTER: <twitter/x handle or URL or empty>

Only include information visible on that page. Do not include support staff unless their title contains "Coach".`, sourceURL)
}

// DiscoveryPrompt asks for official staff directory URLs for a query.
func DiscoveryPrompt(q model.Query) string {
	return fmt.Sprintf(`Find the main coaching staff directory page for %s %s.

Requirements:
1. ONE page that lists ALL coaches in a directory or roster format, not individual bio pages
2. Official athletics website (.edu domain strongly preferred)
3. The page should show names, titles and contact information
4. NOT individual coach bio pages (URLs should not contain coach names)
5. NOT social media, news articles or third-party sites

Good examples:
- goduke.com/sports/football/coaches
- ohiostatebuckeyes.com/sports/m-baskbl/staff
- gostanford.com/sports/wsoc/coaches

Return 3-5 directory page URLs, most relevant first. URLs only, one per line.`, q.School, q.Sport)
}
