package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/coach-directory/internal/model"
)

const (
	cardSelector     = `[class*="staff-member"], [class*="staff-card"], [class*="coach-card"], [itemtype*="schema.org/Person"]`
	socialSelector   = `a[href*="twitter.com/"], a[href*="x.com/"]`
	mailtoSelector   = `a[href^="mailto:"]`
	telSelector      = `a[href^="tel:"]`
	cardNameSelector = `[itemprop="name"], [class*="name"], h3, h4`
	cardRoleSelector = `[itemprop="jobTitle"], [class*="title"], [class*="position"]`
)

// parseHTML reads staff directory markup: header-labeled tables first, then
// staff cards.
func parseHTML(text string) []model.RawRecord {
	if !strings.Contains(text, "<") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}
	if recs := parseTables(doc); len(recs) > 0 {
		return recs
	}
	return parseCards(doc)
}

type column int

const (
	colName column = iota
	colPosition
	colEmail
	colPhone
	colSocial
)

func headerColumn(h string) (column, bool) {
	h = strings.ToLower(h)
	switch {
	case strings.Contains(h, "name"):
		return colName, true
	case strings.Contains(h, "title"), strings.Contains(h, "position"), strings.Contains(h, "role"):
		return colPosition, true
	case strings.Contains(h, "mail"):
		return colEmail, true
	case strings.Contains(h, "phone"):
		return colPhone, true
	case strings.Contains(h, "twitter"), strings.Contains(h, "social"):
		return colSocial, true
	}
	return 0, false
}

func parseTables(doc *goquery.Document) []model.RawRecord {
	var out []model.RawRecord
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		header := tbl.Find("thead tr").First()
		if header.Length() == 0 {
			header = tbl.Find("tr").First()
		}
		cols := map[column]int{}
		header.Children().Each(func(i int, th *goquery.Selection) {
			if c, ok := headerColumn(squash(th.Text())); ok {
				if _, seen := cols[c]; !seen {
					cols[c] = i
				}
			}
		})
		_, hasName := cols[colName]
		_, hasPos := cols[colPosition]
		if !hasName || !hasPos {
			return
		}

		tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if row.Find("td").Length() == 0 {
				return
			}
			// Some directories put the name in a row header.
			cells := row.Children().Filter("th, td")
			cell := func(c column) *goquery.Selection {
				i, ok := cols[c]
				if !ok || i >= cells.Length() {
					return nil
				}
				return cells.Eq(i)
			}
			rec := model.RawRecord{
				Name:     selText(cell(colName)),
				Position: selText(cell(colPosition)),
			}
			if c := cell(colEmail); c != nil {
				rec.Email = mailto(c)
			}
			if rec.Email == "" {
				rec.Email = mailto(row)
			}
			if c := cell(colPhone); c != nil {
				rec.Phone = selText(c)
			}
			rec.SocialHandle = row.Find(socialSelector).First().AttrOr("href", "")
			out = append(out, rec)
		})
	})
	return out
}

func parseCards(doc *goquery.Document) []model.RawRecord {
	var out []model.RawRecord
	seen := map[string]bool{}
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		rec := model.RawRecord{
			Name:     squash(card.Find(cardNameSelector).First().Text()),
			Position: squash(card.Find(cardRoleSelector).First().Text()),
			Email:    mailto(card),
		}
		if tel, ok := card.Find(telSelector).First().Attr("href"); ok {
			rec.Phone = strings.TrimPrefix(tel, "tel:")
		} else {
			rec.Phone = squash(card.Find(`[class*="phone"]`).First().Text())
		}
		rec.SocialHandle = card.Find(socialSelector).First().AttrOr("href", "")

		key := strings.ToLower(rec.Name + "|" + rec.Position)
		if rec.Name == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, rec)
	})
	return out
}

func mailto(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	if href, ok := s.Find(mailtoSelector).First().Attr("href"); ok {
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		return strings.TrimSpace(addr)
	}
	if text := squash(s.Text()); strings.Contains(text, "@") && !strings.Contains(text, " ") {
		return text
	}
	return ""
}

func selText(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	return squash(s.Text())
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
