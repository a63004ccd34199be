package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"crm_lookup", "send_whatsapp"},
		DedupeAndTrim([]string{" crm_lookup ", "send_whatsapp", "crm_lookup", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"analytics", "webhooks"},
		DedupeAndTrimLower([]string{"Analytics", " analytics", "WEBHOOKS"}))
}
