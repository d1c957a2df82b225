package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Source-specific keys accepted for each field, in precedence order.
var (
	titleKeys        = []string{"Title", "title"}
	contentKeys      = []string{"Content", "Feedback", "Body", "body", "text", "content"}
	sourceKeys       = []string{"Source", "Sources", "source"}
	authorKeys       = []string{"Author", "Customer", "author", "user"}
	createdKeys      = []string{"Created_Date", "Created", "created_at", "created", "CreatedDate", "created_date"}
	scenarioKeys     = []string{"Scenario", "scenario"}
	organizationKeys = []string{"Organization", "organization"}
	urlKeys          = []string{"Url", "URL", "url"}
	areaKeys         = []string{"Area", "area"}
	tagKeys          = []string{"Tag", "tag"}
	labelKeys        = []string{"Labels", "labels"}
	sourceHintKeys   = []string{"Forum", "Board", "Source_Hint", "source_hint", "forum", "board"}
)

// Canonicalize maps a loosely keyed collector record onto RawRecord. For each
// field the first alias holding a non-blank value wins. Non-string values are
// stringified and nil becomes "".
func Canonicalize(m map[string]any) RawRecord {
	return RawRecord{
		Title:        pick(m, titleKeys),
		Content:      pick(m, contentKeys),
		Source:       pick(m, sourceKeys),
		Author:       pick(m, authorKeys),
		CreatedDate:  pick(m, createdKeys),
		Scenario:     pick(m, scenarioKeys),
		Organization: pick(m, organizationKeys),
		URL:          pick(m, urlKeys),
		Area:         pick(m, areaKeys),
		Tag:          pick(m, tagKeys),
		Labels:       pickList(m, labelKeys),
		SourceHint:   pick(m, sourceHintKeys),
	}
}

func pick(m map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s := Stringify(v); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func pickList(m map[string]any, keys []string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		var out []string
		switch vv := v.(type) {
		case []string:
			out = vv
		case []any:
			for _, item := range vv {
				if s := labelName(item); s != "" {
					out = append(out, s)
				}
			}
		case string:
			for _, part := range strings.Split(vv, ",") {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
		default:
			if s := Stringify(vv); s != "" {
				out = []string{s}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// labelName accepts plain strings and GitHub-style {"name": "..."} objects.
func labelName(v any) string {
	if obj, ok := v.(map[string]any); ok {
		return Stringify(obj["name"])
	}
	return strings.TrimSpace(Stringify(v))
}

// Stringify renders a decoded JSON or YAML value as text.
func Stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case bool:
		return strconv.FormatBool(vv)
	case time.Time:
		return vv.Format(time.RFC3339)
	case fmt.Stringer:
		return vv.String()
	}
	return fmt.Sprint(v)
}
