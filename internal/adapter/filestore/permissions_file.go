package filestore

import (
	"encoding/json"
	"fmt"

	"github.com/pscheid92/ticketdash/internal/domain"
)

// ReadPermissionsFile returns every object-valued entry of a permissions
// file. The second result lists the user ids whose entry was skipped.
func ReadPermissionsFile(path string) (map[string]domain.PermissionSet, []string, error) {
	var doc map[string]json.RawMessage
	if err := readJSON(path, &doc); err != nil {
		return nil, nil, err
	}

	entries := make(map[string]domain.PermissionSet, len(doc))
	var skipped []string
	for userID, raw := range doc {
		var perms domain.PermissionSet
		if err := json.Unmarshal(raw, &perms); err != nil || perms == nil {
			skipped = append(skipped, userID)
			continue
		}
		entries[userID] = perms
	}
	if len(entries) == 0 && len(skipped) > 0 {
		return nil, skipped, fmt.Errorf("no usable entries in %s", path)
	}
	return entries, skipped, nil
}
