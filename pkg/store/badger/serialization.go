package badger

import (
	"encoding/json"
	"fmt"

	"github.com/harborfs/harbordrive/pkg/drive"
)

// Serialization Strategy
// ======================
//
// Node, share, and link rows are stored as JSON: human-readable, easy to
// inspect with badger tooling, and flexible under schema evolution.
// Index entries (owner, children, recipient) carry no value at all; the
// key is the datum. The token index stores the raw file id bytes.

func encodeNode(n *drive.FileNode) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node: %w", err)
	}
	return data, nil
}

func decodeNode(data []byte) (*drive.FileNode, error) {
	var n drive.FileNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return &n, nil
}

func encodeShare(sh *drive.DirectShare) ([]byte, error) {
	data, err := json.Marshal(sh)
	if err != nil {
		return nil, fmt.Errorf("failed to encode share: %w", err)
	}
	return data, nil
}

func decodeShare(data []byte) (*drive.DirectShare, error) {
	var sh drive.DirectShare
	if err := json.Unmarshal(data, &sh); err != nil {
		return nil, fmt.Errorf("failed to decode share: %w", err)
	}
	return &sh, nil
}

func encodeLink(l *drive.ShareLink) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode link: %w", err)
	}
	return data, nil
}

func decodeLink(data []byte) (*drive.ShareLink, error) {
	var l drive.ShareLink
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode link: %w", err)
	}
	return &l, nil
}
