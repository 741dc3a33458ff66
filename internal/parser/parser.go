package parser

import (
	"bytes"
	stdjson "encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
)

// Parse decodes a single JSON value from reader. Object keys keep the order
// in which they appear in the input.
func Parse(reader io.Reader) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read JSON input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewDecodeError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return nil, errors.NewDecodeError(fmt.Sprintf("JSON syntax error: %v", err), errors.ErrInvalidJSON)
	}

	root, err := decodeToken(decoder, tok)
	if err != nil {
		return nil, errors.NewDecodeError(fmt.Sprintf("JSON syntax error: %v", err), errors.ErrInvalidJSON)
	}

	// Only whitespace may follow the root value.
	if _, err := decoder.Token(); err == nil {
		return nil, errors.NewDecodeError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewDecodeError("invalid trailing data after first JSON value", err)
	}

	// The token stream does not check separators between values.
	if !stdjson.Valid(data) {
		return nil, errors.NewDecodeError("JSON syntax error: missing or misplaced separator", errors.ErrInvalidJSON)
	}

	return root, nil
}

// decodeToken builds the value that starts with tok, reading any nested
// tokens from the decoder.
func decodeToken(decoder *json.Decoder, tok json.Token) (models.Value, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
		}
	case string:
		return models.String(v), nil
	case json.Number:
		return models.Number(v), nil
	case float64:
		return models.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return models.Bool(v), nil
	case nil:
		return models.Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", v)
	}
}

func decodeObject(decoder *json.Decoder) (models.Value, error) {
	obj := models.NewObject()
	for decoder.More() {
		keyTok, err := nextToken(decoder)
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
		}
		valTok, err := nextToken(decoder)
		if err != nil {
			return nil, err
		}
		val, err := decodeToken(decoder, valTok)
		if err != nil {
			return nil, err
		}
		// Duplicate keys: the last value wins, the first position is kept.
		obj.Set(key, val)
	}
	if err := expectDelim(decoder, '}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) (models.Value, error) {
	arr := models.Array{}
	for decoder.More() {
		tok, err := nextToken(decoder)
		if err != nil {
			return nil, err
		}
		val, err := decodeToken(decoder, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if err := expectDelim(decoder, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

// nextToken reads a token inside a container, where EOF is always an error.
func nextToken(decoder *json.Decoder) (json.Token, error) {
	tok, err := decoder.Token()
	if stderrors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func expectDelim(decoder *json.Decoder, want json.Delim) error {
	tok, err := nextToken(decoder)
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return nil, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

// ReadFile reads a non-empty input file, mapping failures onto input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
