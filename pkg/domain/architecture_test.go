package domain

import (
	"testing"

	"frontdesk/testutil"
)

func TestDomainImportsNothingInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "pkg/domain is the shared vocabulary")
}
