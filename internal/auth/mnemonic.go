package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/keystore"
	"github.com/mrz1836/greencli/internal/wallet"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// phraseKeeper owns the on-disk phrase for the local seed variants.
type phraseKeeper struct {
	store  keystore.Storage
	logger gdk.Logger
}

// setMnemonic normalizes whitespace, checks the BIP39 checksum and stores the phrase.
func (p phraseKeeper) setMnemonic(phrase string) error {
	normalized := wallet.NormalizeMnemonic(phrase)
	if err := wallet.ValidateMnemonic(normalized); err != nil {
		if typos := wallet.DetectTypos(normalized); len(typos) > 0 {
			return greenerr.WithSuggestion(greenerr.ErrInvalidMnemonic, wallet.FormatTypoSuggestions(typos))
		}
		return greenerr.WithSuggestion(greenerr.ErrInvalidMnemonic,
			"all words are valid; check the word count, word order and the final checksum word")
	}

	p.logger.Debug("storing mnemonic (%d words)", len(strings.Fields(normalized)))
	return p.store.Store(normalized)
}

// generate stores a phrase produced by the backend.
func (p phraseKeeper) generate(ctx context.Context, backend Backend) error {
	phrase, err := backend.GenerateMnemonic(ctx)
	if err != nil {
		return fmt.Errorf("generating mnemonic: %w", err)
	}
	return p.store.Store(wallet.NormalizeMnemonic(phrase))
}

// seed derives the BIP39 seed of the stored phrase with an empty passphrase.
func (p phraseKeeper) seed() ([]byte, error) {
	phrase, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	seed, err := wallet.MnemonicToSeed(phrase, "")
	if err != nil {
		return nil, greenerr.WithCause(greenerr.ErrInvalidMnemonic, err)
	}
	return seed, nil
}
