package comfy

import "encoding/json"

// PayloadKind tags the shape of the output node's result. The shape is
// decided once, when the ledger entry is read, so downstream code never
// re-inspects raw JSON.
type PayloadKind string

const (
	// PayloadInlineBase64 holds base64-encoded image bytes, possibly
	// prefixed with a data-URI header.
	PayloadInlineBase64 PayloadKind = "inline_base64"

	// PayloadFileReference points at a file saved on the backend that must
	// be fetched through the view endpoint.
	PayloadFileReference PayloadKind = "file_reference"

	// PayloadUnrecognized covers every other shape and is a terminal
	// extraction failure.
	PayloadUnrecognized PayloadKind = "unrecognized"
)

// Payload is the tagged result taken from the ledger for the output node.
type Payload struct {
	Kind      PayloadKind
	Inline    string
	Filename  string
	Subfolder string
}

type fileReference struct {
	Filename  *string `json:"filename"`
	Subfolder *string `json:"subfolder"`
}

// decodePayload classifies the output node's ledger entry. The node payload
// carries an images list; only its first element matters.
func decodePayload(raw json.RawMessage) Payload {
	var node struct {
		Images []json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(raw, &node); err != nil || len(node.Images) == 0 {
		return Payload{Kind: PayloadUnrecognized}
	}
	first := node.Images[0]

	var inline string
	if err := json.Unmarshal(first, &inline); err == nil {
		return Payload{Kind: PayloadInlineBase64, Inline: inline}
	}

	var ref fileReference
	if err := json.Unmarshal(first, &ref); err == nil && ref.Filename != nil && ref.Subfolder != nil {
		return Payload{Kind: PayloadFileReference, Filename: *ref.Filename, Subfolder: *ref.Subfolder}
	}

	return Payload{Kind: PayloadUnrecognized}
}
