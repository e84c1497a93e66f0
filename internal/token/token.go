// Package token estimates token counts for text exchanged with the backend.
//
// The estimate is a deterministic character heuristic, not a model
// tokenizer. It exists to keep the context store's budget arithmetic cheap
// and reproducible; both sides of every comparison use the same rule, so
// accuracy against any particular tokenizer does not matter.
package token

// CharsPerToken is the assumed average number of characters per token.
const CharsPerToken = 4

// Estimate returns the approximate token count of text, one token per
// four bytes, rounded down. The empty string estimates to zero.
func Estimate(text string) int {
	return len(text) / CharsPerToken
}
