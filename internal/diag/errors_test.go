package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "schema mismatch",
			err:  SchemaMismatch("A.sol", 12, "Foo", "contract member"),
			want: "SCHEMA_MISMATCH: unexpected node kind in contract member (kind=Foo) (id=12) at A.sol",
		},
		{
			name: "name span with range",
			err:  NameSpanNotFound("A.sol", 10, 20, "contract"),
			want: "NAME_SPAN_NOT_FOUND: declaration source does not start with its kind keyword (kind=contract) at A.sol:10-20",
		},
		{
			name: "dangling without file",
			err:  DanglingReference("abc", 7),
			want: "DANGLING_REFERENCE: no node bound in unit abc (id=7)",
		},
		{
			name: "no id",
			err:  SchemaMismatch("", NoID, "YulGoto", "yul AST"),
			want: "SCHEMA_MISMATCH: unexpected node kind in yul AST (kind=YulGoto)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("post-process B.sol: %w", DuplicateID("u", "B.sol", 3))

	assert.True(t, IsDuplicateID(err))
	assert.False(t, IsDanglingReference(err))
	assert.False(t, IsSchemaMismatch(errors.New("plain")))
	assert.False(t, HasCode(nil, CodeDuplicateID))

	assert.True(t, IsInconsistentDestroy(InconsistentDestroy("A.sol", 1, "child contracts of X")))
	assert.True(t, IsNameSpanNotFound(NameSpanNotFound("", 0, 1, "enum")))
}
