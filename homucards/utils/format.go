package utils

import "strings"

// FormatDisplayName turns a storage name like "cowboy_bebop" into
// "Cowboy Bebop" for embeds. Storage names stay untouched everywhere else.
func FormatDisplayName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
