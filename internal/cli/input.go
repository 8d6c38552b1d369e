package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// maxInputSize bounds documents read from files or stdin.
const maxInputSize = 16 << 20

// readSource reads a document from a file path, or from stdin when the
// argument is "-".
func readSource(cc *CommandContext, arg string) ([]byte, error) {
	var r io.Reader
	if arg == "-" {
		r = cc.Stdin
	} else {
		f, err := os.Open(arg) //nolint:gosec // user supplied input file
		if err != nil {
			return nil, greenerr.WithDetails(
				greenerr.WithCause(greenerr.ErrInvalidInput, err),
				map[string]string{"path": arg},
			)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", arg, err)
	}
	return data, nil
}

// readJSONSource reads a JSON document with readSource and checks it parses.
func readJSONSource(cc *CommandContext, arg string) (json.RawMessage, error) {
	data, err := readSource(cc, arg)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"source": arg}),
			"expected a JSON document, for example the output of a previous command",
		)
	}
	return json.RawMessage(data), nil
}

// decodeField extracts one field from a JSON object result.
func decodeField(raw json.RawMessage, field string, v any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	value, ok := obj[field]
	if !ok {
		return greenerr.WithDetails(greenerr.ErrGeneral, map[string]string{"missing_field": field})
	}
	if err := json.Unmarshal(value, v); err != nil {
		return fmt.Errorf("decoding %s: %w", field, err)
	}
	return nil
}
