package units

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/errors"
)

// ChineseUnits maps Chinese unit names to the registry names they alias.
var ChineseUnits = map[string]string{
	// length
	"米":   "meter",
	"千米":  "kilometer",
	"分米":  "decimeter",
	"厘米":  "centimeter",
	"毫米":  "millimeter",
	"微米":  "micrometer",
	"纳米":  "nanometer",
	"皮米":  "picometer",
	"飞米":  "femtometer",
	"里":   "li",
	"丈":   "zhang",
	"尺":   "chi",
	"寸":   "cun",
	"分长度": "fen",
	"公分":  "centimeter",

	// mass
	"千克": "kilogram",
	"克":  "gram",
	"毫克": "milligram",
	"微克": "microgram",
	"吨":  "metric_ton",
	"斤":  "jin",
	"两":  "liang",

	// time
	"秒":  "second",
	"分钟": "minute",
	"刻钟": "15 * minute",
	"时":  "hour",
	"天":  "day",
	"周":  "week",
	"月":  "month",
	"年":  "year",

	// area
	"平方米":  "square_meter",
	"平方千米": "square_kilometer",
	"平方厘米": "square_centimeter",
	"平方毫米": "square_millimeter",
	"亩":    "mu",
	"公顷":   "hectare",

	// volume
	"立方米": "cubic_meter",
	"升":   "liter",
	"毫升":  "milliliter",

	// force
	"牛":  "newton",
	"千牛": "kilonewton",

	// pressure
	"帕":     "pascal",
	"千帕":    "kilopascal",
	"兆帕":    "megapascal",
	"巴":     "bar",
	"标准大气压": "atmosphere",

	// energy
	"焦":   "joule",
	"千焦":  "kilojoule",
	"卡":   "calorie",
	"千卡":  "kilocalorie",
	"瓦时":  "watt_hour",
	"千瓦时": "kilowatt_hour",

	// power
	"瓦":  "watt",
	"千瓦": "kilowatt",
	"兆瓦": "megawatt",

	// temperature
	"开":   "kelvin",
	"摄氏度": "degC",
	"华氏度": "degF",

	// electric
	"安":  "ampere",
	"毫安": "milliampere",
	"微安": "microampere",
	"伏":  "volt",
	"毫伏": "millivolt",
	"千伏": "kilovolt",
	"欧":  "ohm",

	// other
	"摩尔": "mole",
	"坎":  "candela",
}

// RegisterAliases defines "alias = target" for every entry of table, in
// sorted alias order. Aliases whose name is already taken are skipped and
// returned; any other failure stops registration and is returned as is.
func (r *Registry) RegisterAliases(table map[string]string) ([]string, error) {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	var skipped []string
	for _, name := range names {
		err := r.Define(name + " = " + table[name])
		if err == nil {
			continue
		}
		if errors.IsType(err, errors.ErrorTypeConflict) {
			r.logger.Debug("alias skipped", zap.String("alias", name), zap.Error(err))
			skipped = append(skipped, name)
			continue
		}
		return skipped, err
	}

	r.logger.Info("aliases registered",
		zap.Int("defined", len(names)-len(skipped)),
		zap.Int("skipped", len(skipped)))
	return skipped, nil
}
