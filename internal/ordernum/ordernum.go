package ordernum

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// alphabet excludes characters that are easy to misread over chat: O/I and 0/1.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const randomLen = 4

// Generate returns a human-presentable order number, e.g. ECO-250829-7KQ3.
// Uniqueness is enforced by the orders table, not here.
func Generate() string {
	datePart := time.Now().UTC().Format("060102")

	buf := make([]byte, randomLen)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}

	return fmt.Sprintf("ECO-%s-%s", datePart, buf)
}
