package badger

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so we organize the two logical registry
// tables (file-nodes, shares-and-links) into prefixed namespaces. This:
//   - Prevents collisions between data types
//   - Enables efficient range scans (children of a folder, shares on a
//     file, shares granted to a user)
//   - Keeps the database structure self-documenting
//
// Nodes, shares, and links are identified by UUID v4, generated at the
// service layer.
//
// Key Namespace Prefixes:
//
// Data Type            Prefix  Key Format                    Value
// =====================================================================
// File Node            "n:"    n:<nodeID>                    FileNode (JSON)
// Owner Index          "o:"    o:<ownerID>:<nodeID>          (empty)
// Children Index       "c:"    c:<parentID>:<nodeID>         (empty)
// Direct Share         "s:"    s:<fileID>:<sharedWithID>     DirectShare (JSON)
// Recipient Index      "r:"    r:<userID>:<fileID>           (empty)
// Share Link           "l:"    l:<fileID>                    ShareLink (JSON)
// Token Index          "t:"    t:<token>                     fileID (bytes)
//
// Rationale:
//
// 1. File Node (n:): point lookup by id, O(1).
// 2. Owner Index (o:): range scan over o:<ownerID>: yields every node
//    the owner has; listing filters by parent after decoding. Root-level
//    nodes have no children-index entry, so owner scans are the only way
//    to enumerate them.
// 3. Children Index (c:): range scan over c:<parentID>: drives
//    recursive folder deletion without touching other owners' keys.
// 4. Direct Share (s:): the (fileID, sharedWithID) pair IS the key,
//    which makes the at-most-one-share-per-pair invariant structural:
//    an upsert is a plain Set.
// 5. Recipient Index (r:): range scan over r:<userID>: answers
//    "shared with me" without a full share scan.
// 6. Share Link (l:): keyed by file id, which makes the
//    at-most-one-link-per-file invariant structural at the row level.
// 7. Token Index (t:): point lookup for token resolution; rotated
//    together with l: inside the same transaction.

const (
	prefixNode      = "n:"
	prefixOwner     = "o:"
	prefixChildren  = "c:"
	prefixShare     = "s:"
	prefixRecipient = "r:"
	prefixLink      = "l:"
	prefixToken     = "t:"
)

func keyNode(id string) []byte { return []byte(prefixNode + id) }

func keyOwner(ownerID, nodeID string) []byte {
	return []byte(prefixOwner + ownerID + ":" + nodeID)
}

func keyChild(parentID, nodeID string) []byte {
	return []byte(prefixChildren + parentID + ":" + nodeID)
}

func keyShare(fileID, sharedWithID string) []byte {
	return []byte(prefixShare + fileID + ":" + sharedWithID)
}

func keyRecipient(userID, fileID string) []byte {
	return []byte(prefixRecipient + userID + ":" + fileID)
}

func keyLink(fileID string) []byte { return []byte(prefixLink + fileID) }

func keyToken(token string) []byte { return []byte(prefixToken + token) }
