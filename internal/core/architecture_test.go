package core

import (
	"testing"

	"frontdesk/testutil"
)

func TestCoreStaysFreeOfAdapters(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.AnyOf(testutil.InfraImportForbidden, testutil.OuterLayerForbidden),
		"the engine must not depend on storage, brokers or the command line")
}
