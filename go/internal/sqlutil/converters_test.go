package sqlutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringConverters(t *testing.T) {
	assert.False(t, ToSqlString(nil).Valid)

	v := "p1"
	ns := ToSqlString(&v)
	assert.Equal(t, sql.NullString{String: "p1", Valid: true}, ns)
	assert.Equal(t, "p1", *FromSqlStringPtr(ns))
	assert.Nil(t, FromSqlStringPtr(sql.NullString{}))
	assert.Equal(t, "fallback", FromSqlString(sql.NullString{}, "fallback"))
}
