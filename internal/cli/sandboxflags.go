package cli

import (
	"flag"

	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

// sandboxFlags is the shared flag group registered on create, set, and run.
type sandboxFlags struct {
	enable  boolFlag
	disable boolFlag
	profile stringFlag
	write   stringSliceFlag
	noNet   boolFlag
	net     boolFlag
}

func registerSandboxFlags(fs *flag.FlagSet) *sandboxFlags {
	sf := &sandboxFlags{}
	fs.Var(&sf.enable, "sandbox", "launch inside the sandbox")
	fs.Var(&sf.disable, "no-sandbox", "launch without the sandbox")
	fs.Var(&sf.profile, "sandbox-profile", "use a prebuilt sandbox profile file")
	fs.Var(&sf.write, "sandbox-write", "extra writable path (repeatable)")
	fs.Var(&sf.noNet, "sandbox-no-network", "deny network access inside the sandbox")
	fs.Var(&sf.net, "sandbox-network", "allow network access inside the sandbox")
	return sf
}

func (sf *sandboxFlags) overrides() sandbox.Overrides {
	return sandbox.Overrides{
		Enable:       sf.enable.set && sf.enable.value,
		Disable:      sf.disable.set && sf.disable.value,
		Profile:      sf.profile.value,
		Write:        append([]string(nil), sf.write...),
		WriteSet:     len(sf.write) > 0,
		DenyNetwork:  sf.noNet.set && sf.noNet.value,
		AllowNetwork: sf.net.set && sf.net.value,
	}
}

func (sf *sandboxFlags) touched() bool {
	return sf.enable.set || sf.disable.set || sf.profile.set || len(sf.write) > 0 || sf.noNet.set || sf.net.set
}
