package cfg

import (
	"strings"

	"github.com/spf13/pflag"
)

// StripUnknown removes flags fs does not define from args so that Parse
// never fails on them, calling warn once per dropped flag. Values of known
// flags given as separate arguments are kept with their flag.
func StripUnknown(fs *pflag.FlagSet, args []string, warn func(string)) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]

		switch {
		case a == "--":
			return append(out, args[i:]...)

		case strings.HasPrefix(a, "--"):
			name, _, hasValue := strings.Cut(a[2:], "=")
			f := fs.Lookup(name)
			if f == nil {
				if warn != nil {
					warn(a)
				}
				continue
			}
			out = append(out, a)
			if !hasValue && needsValue(f) && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}

		case strings.HasPrefix(a, "-") && len(a) > 1:
			kept, consumesNext := stripShorthands(fs, a[1:], warn)
			if kept != "" {
				out = append(out, "-"+kept)
			}
			if consumesNext && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}

		default:
			out = append(out, a)
		}
	}
	return out
}

// stripShorthands filters a "-abc" cluster. A flag that takes a value ends
// the cluster: the remainder is its value, or the next argument if empty.
func stripShorthands(fs *pflag.FlagSet, cluster string, warn func(string)) (kept string, consumesNext bool) {
	var b strings.Builder
	for j := 0; j < len(cluster); j++ {
		c := cluster[j : j+1]
		f := fs.ShorthandLookup(c)
		if f == nil {
			if warn != nil {
				warn("-" + c)
			}
			continue
		}
		b.WriteString(c)
		if needsValue(f) {
			rest := cluster[j+1:]
			b.WriteString(rest)
			return b.String(), rest == ""
		}
		if j+1 < len(cluster) && cluster[j+1] == '=' {
			b.WriteString(cluster[j+1:])
			return b.String(), false
		}
	}
	return b.String(), false
}

func needsValue(f *pflag.Flag) bool {
	return f.NoOptDefVal == ""
}
