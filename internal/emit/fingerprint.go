package emit

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("wsgen-artifact-fingerprint-key-1")

// fingerprint returns the 64-bit HighwayHash of data.
func fingerprint(data []byte) (uint64, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0, errors.Wrap(err, "creating fingerprint hash")
	}
	_, err = h.Write(data)
	return h.Sum64(), err
}

// pathID returns a stable hex identifier for a location, used to name
// directories under the derived root.
func pathID(location string) (string, error) {
	sum, err := fingerprint([]byte(location))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", sum), nil
}
