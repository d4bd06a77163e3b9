package main

import (
	"strings"

	"golang.org/x/net/html"
)

// findHiddenInput scans doc forward for an <input> whose name attribute
// equals name and returns its value. The tokenizer never builds a DOM, so
// malformed markup around the field does not matter. Tag and attribute
// names are matched case-insensitively (the tokenizer lowercases them);
// the name value itself is matched exactly.
func findHiddenInput(doc, name string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tag, hasAttr := z.TagName()
			if string(tag) != "input" || !hasAttr {
				continue
			}
			var nameMatch bool
			var value string
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "name":
					nameMatch = string(val) == name
				case "value":
					value = string(val)
				}
				if !more {
					break
				}
			}
			if nameMatch && value != "" {
				return value, true
			}
		}
	}
}

// extractOrderID pulls the server-issued order id out of the reservation
// response. There is no fallback: a missing id is fatal for the run.
func extractOrderID(doc string) (string, error) {
	id, ok := findHiddenInput(doc, "ordr_idxx")
	if !ok {
		return "", ErrOrderIDNotFound
	}
	return id, nil
}
