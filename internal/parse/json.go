package parse

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/titanous/json5"

	"github.com/sells-group/coach-directory/internal/model"
)

// parseJSON accepts a top-level array, or an object with a "coaches" or
// "data" array, or else the first array-valued key in document order.
func parseJSON(text string) []model.RawRecord {
	doc, ok := loadJSON(text)
	if !ok {
		return nil
	}

	var arr gjson.Result
	switch {
	case doc.IsArray():
		arr = doc
	case doc.IsObject():
		for _, key := range []string{"coaches", "data"} {
			if v := doc.Get(key); v.IsArray() {
				arr = v
				break
			}
		}
		if !arr.Exists() {
			doc.ForEach(func(_, v gjson.Result) bool {
				if v.IsArray() {
					arr = v
					return false
				}
				return true
			})
		}
	}
	if !arr.IsArray() {
		return nil
	}

	var out []model.RawRecord
	arr.ForEach(func(_, el gjson.Result) bool {
		if !el.IsObject() {
			return true
		}
		out = append(out, model.RawRecord{
			Name:         field(el, "name", "full_name", "coach"),
			Position:     field(el, "position", "title", "role"),
			Email:        field(el, "email"),
			Phone:        field(el, "phone", "phone_number"),
			SocialHandle: field(el, "social_handle", "twitter", "social", "x"),
		})
		return true
	})
	return out
}

func field(el gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := el.Get(k); v.Exists() && v.Type != gjson.Null {
			if s := clean(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// loadJSON strips code fences and isolates the JSON payload. Documents that
// are not strict JSON get a second chance through json5 so trailing commas
// and single quotes survive.
func loadJSON(text string) (gjson.Result, bool) {
	body := extractPayload(stripFences(text))
	if body == "" {
		return gjson.Result{}, false
	}
	if gjson.Valid(body) {
		return gjson.Parse(body), true
	}

	var v any
	if err := json5.Unmarshal([]byte(body), &v); err != nil {
		return gjson.Result{}, false
	}
	// Re-encoding loses key order, so only arrays keep document order here.
	b, err := json.Marshal(v)
	if err != nil {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(b), true
}

// stripFences removes a ```json ... ``` wrapper if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	} else {
		rest = strings.TrimPrefix(rest, "json")
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// extractPayload trims prose around the outermost array or object.
func extractPayload(text string) string {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return ""
	}
	return text[start : end+1]
}
