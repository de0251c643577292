// internal/trip/decode.go
package trip

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// UnmarshalJSON decodes a stored trip leniently. Optional fields of the
// wrong shape are dropped and recorded in Ignored; numbers may be stored as
// numeric strings and places as plain strings. Only a document that is not
// a JSON object is an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("trip document must be a JSON object: %w", err)
	}

	dec := &lenientDecoder{}
	doc := Document{
		UID:         dec.text(fields["uid"], "uid"),
		Destination: dec.place(fields["destination"], "destination"),
		Origin:      dec.place(fields["origin"], "origin"),
		StartDate:   dec.text(fields["startDate"], "startDate"),
		EndDate:     dec.text(fields["endDate"], "endDate"),
		Guests:      dec.count(fields["guests"], "guests"),
		Budget:      dec.budget(fields["budget"], "budget"),
		Preferences: dec.object(fields["preferences"], "preferences"),
	}
	sort.Strings(dec.ignored)
	doc.Ignored = dec.ignored

	*d = doc
	return nil
}

type lenientDecoder struct {
	ignored []string
}

func (l *lenientDecoder) ignore(path string) {
	l.ignored = append(l.ignored, path)
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (l *lenientDecoder) text(raw json.RawMessage, path string) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		l.ignore(path)
		return ""
	}
	return s
}

// number accepts a JSON number or a string holding one.
func (l *lenientDecoder) number(raw json.RawMessage, path string) *float64 {
	if !present(raw) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
	}
	l.ignore(path)
	return nil
}

// count is a number that must also be whole.
func (l *lenientDecoder) count(raw json.RawMessage, path string) *int {
	f := l.number(raw, path)
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		l.ignore(path)
		return nil
	}
	n := int(*f)
	return &n
}

func (l *lenientDecoder) place(raw json.RawMessage, path string) *Place {
	if !present(raw) {
		return nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return &Place{Name: name}
	}
	fields, ok := l.fields(raw, path)
	if !ok {
		return nil
	}
	return &Place{Name: l.text(fields["name"], path+".name")}
}

func (l *lenientDecoder) fields(raw json.RawMessage, path string) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		l.ignore(path)
		return nil, false
	}
	return fields, true
}

func (l *lenientDecoder) object(raw json.RawMessage, path string) map[string]interface{} {
	if !present(raw) {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		l.ignore(path)
		return nil
	}
	return out
}

func (l *lenientDecoder) budget(raw json.RawMessage, path string) *Budget {
	if !present(raw) {
		return nil
	}
	fields, ok := l.fields(raw, path)
	if !ok {
		return nil
	}

	b := &Budget{
		Total:    l.number(fields["total"], path+".total"),
		Currency: l.text(fields["currency"], path+".currency"),
	}
	if !present(fields["allocation"]) {
		return b
	}
	entries, ok := l.fields(fields["allocation"], path+".allocation")
	if !ok {
		return b
	}

	b.Allocation = make(map[string]Allocation, len(entries))
	for category, entry := range entries {
		entryPath := path + ".allocation." + category
		if !present(entry) {
			continue
		}
		// A bare amount stands for {"amount": <n>}.
		if bytes.TrimSpace(entry)[0] != '{' {
			if amount := l.number(entry, entryPath); amount != nil {
				b.Allocation[category] = Allocation{Amount: amount}
			}
			continue
		}
		alloc, _ := l.fields(entry, entryPath)
		b.Allocation[category] = Allocation{
			Amount:   l.number(alloc["amount"], entryPath+".amount"),
			Currency: l.text(alloc["currency"], entryPath+".currency"),
		}
	}
	return b
}
