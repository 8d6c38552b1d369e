// Package wallet is the key derivation engine: BIP39 mnemonic handling,
// BIP32 derivation, extended key serialization and deterministic ECDSA
// signing of messages and witness transaction inputs.
package wallet

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic indicates the mnemonic is not valid.
var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// NormalizeMnemonic collapses all whitespace runs to single spaces and trims
// the ends. Words are otherwise left as given.
func NormalizeMnemonic(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// ValidateMnemonic checks word validity and the BIP39 checksum of a phrase.
func ValidateMnemonic(mnemonic string) error {
	normalized := NormalizeMnemonic(mnemonic)
	if normalized == "" {
		return ErrInvalidMnemonic
	}

	// MnemonicToByteArray validates word count, word validity, AND checksum
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return ErrInvalidMnemonic
	}
	return nil
}

// MnemonicToSeed converts a BIP39 mnemonic phrase to a 64-byte seed.
// The returned seed should be zeroed after use.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	normalized := NormalizeMnemonic(mnemonic)
	if err := ValidateMnemonic(normalized); err != nil {
		return nil, err
	}
	return bip39.NewSeed(normalized, passphrase), nil
}

// IsValidWord checks if a word is in the BIP39 word list.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// MaxTypoDistance is the maximum Levenshtein distance to consider a suggestion.
const MaxTypoDistance = 2

// TypoInfo describes a word that is not in the BIP39 word list.
type TypoInfo struct {
	// Index is the word position in the mnemonic (0-based).
	Index int
	// Word is the original (possibly misspelled) word.
	Word string
	// Suggestion is the closest BIP39 word, or empty if none found.
	Suggestion string
}

// SuggestWord finds the closest BIP39 word to the input using Levenshtein distance.
// Returns empty string if no word is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos returns every word of the phrase missing from the BIP39 word list.
func DetectTypos(mnemonic string) []TypoInfo {
	var typos []TypoInfo
	for i, word := range strings.Fields(mnemonic) {
		if IsValidWord(word) {
			continue
		}
		typos = append(typos, TypoInfo{
			Index:      i,
			Word:       word,
			Suggestion: SuggestWord(word),
		})
	}
	return typos
}

// FormatTypoSuggestions formats typo information into human-readable suggestions.
func FormatTypoSuggestions(typos []TypoInfo) string {
	var b strings.Builder
	for i, typo := range typos {
		if i > 0 {
			b.WriteByte('\n')
		}
		// Word position is 1-indexed for human readability
		b.WriteString("Word ")
		b.WriteString(strconv.Itoa(typo.Index + 1))
		b.WriteString(": '")
		b.WriteString(typo.Word)
		b.WriteByte('\'')
		if typo.Suggestion != "" {
			b.WriteString(" - did you mean '")
			b.WriteString(typo.Suggestion)
			b.WriteString("'?")
		} else {
			b.WriteString(" is not a valid BIP39 word")
		}
	}
	return b.String()
}
