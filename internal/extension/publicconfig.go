/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extension

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/projectbeskar/smctl/api/compute"
)

// ErrMalformedPublicConfig is returned when a public configuration is neither
// well-formed XML nor a JSON object
var ErrMalformedPublicConfig = errors.New("malformed public configuration")

// PublicConfigValue returns the text of the named element of ext's public
// configuration. XML payloads are searched for the first element with that
// local name; JSON payloads for a top-level key. An empty payload or a missing
// element yields "".
func PublicConfigValue(ext compute.Extension, element string) (string, error) {
	payload := strings.TrimSpace(ext.PublicConfiguration)
	switch {
	case payload == "":
		return "", nil
	case strings.HasPrefix(payload, "<"):
		return xmlElementValue(payload, element)
	case strings.HasPrefix(payload, "{"):
		return jsonKeyValue(payload, element)
	default:
		return "", fmt.Errorf("extension %s: %w", ext.ID, ErrMalformedPublicConfig)
	}
}

func xmlElementValue(payload, element string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(payload))
	depth := -1
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedPublicConfig, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth >= 0 {
				depth++
			} else if t.Name.Local == element {
				depth = 0
			}
		case xml.EndElement:
			if depth == 0 {
				return strings.TrimSpace(text.String()), nil
			}
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth == 0 {
				text.Write(t)
			}
		}
	}
}

func jsonKeyValue(payload, key string) (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPublicConfig, err)
	}

	raw, ok := doc[key]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return string(raw), nil
}
