package cli

// Build metadata, set by the linker at build time
var (
	// BuildTag is the git tag, empty when not built from a tagged version
	BuildTag string
	// BuildTime is when the binary was built
	BuildTime string
	// BuildSHA is the git commit
	BuildSHA string
)

// buildVersion returns <Git SHA>-<Git Tag>, with "dirty" in place of a
// missing tag
func buildVersion() string {
	tag := BuildTag
	if tag == `` {
		tag = `dirty`
	}
	return BuildSHA + `-` + tag
}
