package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/san-import-cli/internal/model"
)

func TestClassify_DumpByBacktickBanner(t *testing.T) {
	text := "`show device-alias database`\ndevice-alias name HOST1 pwwn 50:05:07:63:0a:03:17:e4\n"
	assert.Equal(t, model.FormatTechSupportDump, Classify(text))
}

func TestClassify_DumpByDashBanner(t *testing.T) {
	text := "---------- show zoneset active ----------\nzone name Z1 vsan 10\n"
	assert.Equal(t, model.FormatTechSupportDump, Classify(text))
}

func TestClassify_DumpBySize(t *testing.T) {
	// No markers at all, but far above the export size threshold.
	text := strings.Repeat("interface fc1/1 is up\n", 30000)
	assert.Greater(t, len(text), techSupportSizeThreshold)
	assert.Equal(t, model.FormatTechSupportDump, Classify(text))
}

func TestClassify_ZoneExport(t *testing.T) {
	text := "zone name Z_HOST1_STOR1 vsan 10\n member device-alias HOST1\n member device-alias STOR1\n"
	assert.Equal(t, model.FormatZoneExport, Classify(text))
}

func TestClassify_ZoneDeclarationBeatsAliasLines(t *testing.T) {
	// Zone exports can carry alias-looking member lines; the explicit zone
	// declaration decides.
	text := "fcalias name OLD vsan 10\n member pwwn 50:05:07:63:0a:03:17:e4\nzone name Z1 vsan 10\n member fcalias OLD\n"
	assert.Equal(t, model.FormatZoneExport, Classify(text))
}

func TestClassify_DeviceAliasExport(t *testing.T) {
	text := "device-alias name HOST1 pwwn 50:05:07:63:0a:03:17:e4\ndevice-alias name HOST2 pwwn 50:05:07:63:0a:03:17:e5\n"
	assert.Equal(t, model.FormatAliasExport, Classify(text))
}

func TestClassify_FcaliasExport(t *testing.T) {
	text := "fcalias name STOR1 vsan 10\n member pwwn 21:00:00:24:ff:4c:a2:18\n"
	assert.Equal(t, model.FormatAliasExport, Classify(text))
}

func TestClassify_Unknown(t *testing.T) {
	assert.Equal(t, model.FormatUnknown, Classify("interface fc1/1\n no shutdown\n"))
	assert.Equal(t, model.FormatUnknown, Classify(""))
}
