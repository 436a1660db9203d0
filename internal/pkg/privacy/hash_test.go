package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashUserID(t *testing.T) {
	a := HashUserID("905551112233@s.whatsapp.net")
	b := HashUserID("905551112233@s.whatsapp.net")
	c := HashUserID("905559998877@s.whatsapp.net")

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "9055")
	assert.Equal(t, "", HashUserID(""))
}
