package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "examreg/pkg/domain"
)

func TestDirtySet(t *testing.T) {
	var d DirtySet
	a := Key{ApplicationID: id.NewApplicationID(), RecordID: id.NewRecordID()}
	b := Key{AccountID: id.NewAccountID()}

	assert.False(t, d.Has(a))
	d.Mark(a)
	d.Mark(a)
	d.Mark(b)
	assert.Equal(t, 2, d.Len())
	assert.ElementsMatch(t, []Key{a, b}, d.Keys())

	d.Clear([]Key{a})
	assert.False(t, d.Has(a))
	assert.True(t, d.Has(b))
}

func TestKeyString(t *testing.T) {
	appID := id.NewApplicationID()
	recID := id.NewRecordID()
	assert.Equal(t, appID.String()+"/"+recID.String(), Key{ApplicationID: appID, RecordID: recID}.String())
	assert.Equal(t, appID.String(), Key{ApplicationID: appID}.String())
}
