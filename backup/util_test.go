package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/unicode"
)

func TestDecodeToolOutput(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	wide, err := enc.Bytes([]byte("Export in progress, this may take a few minutes.\r\n"))
	assert.NoError(t, err)

	assert.Equal(t, "Export in progress, this may take a few minutes.", decodeToolOutput(wide))
	assert.Equal(t, "compressed 10 bytes", decodeToolOutput([]byte("compressed 10 bytes\n")))
	assert.Equal(t, "", decodeToolOutput(nil))
}
