package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_EmbeddedLocales(t *testing.T) {
	assert.Equal(t, "approved", Translate("en", "OUTCOME_APPROVED"))
	assert.Equal(t, "rechazado", Translate("es", "OUTCOME_REJECTED"))
	assert.Equal(t, `Your listing "Radar" was deleted`, Translatef("en", "SUBJECT_LISTING_MODERATED", "Radar", "deleted"))
}

func TestTranslate_Fallback(t *testing.T) {
	assert.Equal(t, "updated", Translate("fr", "OUTCOME_UPDATED"))
	assert.Equal(t, "NON_EXISTENT_KEY", Translate("es", "NON_EXISTENT_KEY"))
}

func TestLoadTranslations(t *testing.T) {
	fsys := fstest.MapFS{
		"de/email.yaml": {Data: []byte("EMAIL:\n  OUTCOME_APPROVED: \"genehmigt\"\n")},
		"broken.txt":    {Data: []byte("ignored")},
		"nl/readme.md":  {Data: []byte("no email file")},
	}

	require.NoError(t, LoadTranslations(fsys))
	assert.Equal(t, "genehmigt", Translate("de", "OUTCOME_APPROVED"))
	assert.Equal(t, "rejected", Translate("de", "OUTCOME_REJECTED"))

	bad := fstest.MapFS{"xx/email.yaml": {Data: []byte("EMAIL: [unclosed")}}
	assert.Error(t, LoadTranslations(bad))
}
