// Package uuid wraps github.com/hashicorp/go-uuid to generate random UUID
// strings; the engine uses one as the correlation ID of each comparison run.
package uuid

import (
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// Generate returns a new random UUID string.
func Generate() string {
	buf, err := uuid.GenerateRandomBytes(16)
	if err != nil {
		panic(fmt.Errorf("failed to read random bytes: %v", err))
	}

	return fmt.Sprintf("%x-%x-%x-%x-%x",
		buf[0:4],
		buf[4:6],
		buf[6:8],
		buf[8:10],
		buf[10:16])
}
