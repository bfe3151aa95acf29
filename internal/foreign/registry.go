package foreign

import (
	"log/slog"
	"math"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

// Natives returns the host functions available to programs, keyed by their
// dotted name. `math.sqrt(2)` resolves "math.sqrt" when math is not bound.
func Natives() map[string]*object.Native {
	natives := map[string]*object.Native{
		"math.sqrt":   fnMathUnary("sqrt", math.Sqrt),
		"math.floor":  fnMathRound("floor", math.Floor),
		"math.ceil":   fnMathRound("ceil", math.Ceil),
		"math.abs":    fnMathAbs(),
		"math.pow":    fnMathPow(),
		"math.min":    fnMathExtremum("min", -1),
		"math.max":    fnMathExtremum("max", 1),
		"math.random": fnMathRandom(),

		"str.upper":       fnStrMap("upper", strings.ToUpper),
		"str.lower":       fnStrMap("lower", strings.ToLower),
		"str.trim":        fnStrMap("trim", strings.TrimSpace),
		"str.replace":     fnStrReplace(),
		"str.starts_with": fnStrPredicate("starts_with", strings.HasPrefix),
		"str.ends_with":   fnStrPredicate("ends_with", strings.HasSuffix),
		"str.index_of":    fnStrIndexOf(),
		"str.repeat":      fnStrRepeat(),
		"str.format":      fnStrFormat(),

		"sys.env":   fnSysEnv(),
		"sys.args":  fnSysArgs(),
		"sys.time":  fnSysTime(),
		"sys.sleep": fnSysSleep(),
		"sys.exit":  fnSysExit(),

		"fs.read":   fnFsRead(),
		"fs.write":  fnFsWrite(false),
		"fs.append": fnFsWrite(true),
		"fs.exists": fnFsExists(),
		"fs.remove": fnFsRemove(),

		"json.parse":     fnJSONParse(),
		"json.stringify": fnJSONStringify(),
		"yaml.parse":     fnYAMLParse(),
		"yaml.stringify": fnYAMLStringify(),

		"db.open":     fnDbOpen(),
		"db.exec":     fnDbExec(),
		"db.query":    fnDbQuery(),
		"db.begin":    fnDbBegin(),
		"db.commit":   fnDbCommit(),
		"db.rollback": fnDbRollback(),
		"db.close":    fnDbClose(),
	}
	slog.Debug("natives registered", slog.Int("count", len(natives)))
	return natives
}
