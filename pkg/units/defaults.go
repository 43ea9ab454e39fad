package units

var defaultPrefixes = []prefix{
	{name: "yotta", symbols: []string{"Y"}, factor: 1e24},
	{name: "zetta", symbols: []string{"Z"}, factor: 1e21},
	{name: "exa", symbols: []string{"E"}, factor: 1e18},
	{name: "peta", symbols: []string{"P"}, factor: 1e15},
	{name: "tera", symbols: []string{"T"}, factor: 1e12},
	{name: "giga", symbols: []string{"G"}, factor: 1e9},
	{name: "mega", symbols: []string{"M"}, factor: 1e6},
	{name: "kilo", symbols: []string{"k"}, factor: 1e3},
	{name: "hecto", symbols: []string{"h"}, factor: 1e2},
	{name: "deca", symbols: []string{"da"}, factor: 1e1},
	{name: "deci", symbols: []string{"d"}, factor: 1e-1},
	{name: "centi", symbols: []string{"c"}, factor: 1e-2},
	{name: "milli", symbols: []string{"m"}, factor: 1e-3},
	{name: "micro", symbols: []string{"u", "\u00b5", "\u03bc"}, factor: 1e-6},
	{name: "nano", symbols: []string{"n"}, factor: 1e-9},
	{name: "pico", symbols: []string{"p"}, factor: 1e-12},
	{name: "femto", symbols: []string{"f"}, factor: 1e-15},
	{name: "atto", symbols: []string{"a"}, factor: 1e-18},
	{name: "zepto", symbols: []string{"z"}, factor: 1e-21},
	{name: "yocto", symbols: []string{"y"}, factor: 1e-24},
}

// defaultDefinitions seeds every new registry. Order matters: a definition may
// only refer to units defined above it. The mass reference unit is the gram,
// so kilogram is derived through the kilo prefix like any other unit.
var defaultDefinitions = []string{
	// base units
	"meter = [length] = m = metre",
	"gram = [mass] = g = gramme",
	"second = [time] = s = sec",
	"ampere = [current] = A = amp",
	"kelvin = [temperature] = K",
	"mole = [amount] = mol",
	"candela = [luminosity] = cd",

	// dimensionless
	"radian = 1 = rad",
	"steradian = radian ** 2 = sr",
	"percent = 0.01",

	// length
	"angstrom = 1e-10 * meter = _ = ångström",
	"micron = micrometer",
	"inch = 2.54 * centimeter = in",
	"foot = 12 * inch = ft = feet",
	"yard = 3 * foot = yd",
	"mile = 1760 * yard = mi",
	"nautical_mile = 1852 * meter = nmi",
	"astronomical_unit = 149597870700 * meter = au",
	"light_year = 9460730472580800 * meter = ly",
	"light_second = 299792458 * meter = ls",
	"light_minute = 60 * light_second = lmin",
	"light_hour = 60 * light_minute = lh",
	"light_day = 24 * light_hour = lday",

	// traditional Chinese units
	"li = 500 * meter",
	"zhang = 10 / 3 * meter",
	"chi = 1 / 3 * meter",
	"cun = 1 / 30 * meter",
	"fen = 1 / 300 * meter",
	"jin = 500 * gram",
	"liang = 50 * gram",
	"mu = 2000 / 3 * meter ** 2",

	// mass
	"metric_ton = 1000 * kilogram = t = tonne",
	"pound = 0.45359237 * kilogram = lb",
	"ounce = pound / 16 = oz",
	"stone = 14 * pound = st",
	"grain = 64.79891 * milligram = gr",

	// time
	"minute = 60 * second = min",
	"hour = 60 * minute = h = hr",
	"day = 24 * hour = d",
	"week = 7 * day",
	"year = 365.25 * day = yr = julian_year",
	"month = year / 12",

	// area and volume
	"are = 100 * meter ** 2",
	"hectare = 100 * are = ha",
	"acre = 4046.8564224 * meter ** 2",
	"liter = decimeter ** 3 = l = L = litre",
	"gallon = 231 * inch ** 3 = gal",

	// mechanics
	"hertz = 1 / second = Hz",
	"standard_gravity = 9.80665 * meter / second ** 2 = g_0 = g_n",
	"newton = kilogram * meter / second ** 2 = N",
	"dyne = gram * centimeter / second ** 2 = dyn",
	"kilogram_force = kilogram * standard_gravity = kgf",
	"pound_force = pound * standard_gravity = lbf",
	"pascal = newton / meter ** 2 = Pa",
	"bar = 100000 * pascal",
	"atmosphere = 101325 * pascal = atm",
	"torr = atmosphere / 760 = Torr",
	"psi = pound_force / inch ** 2",
	"joule = newton * meter = J",
	"erg = dyne * centimeter",
	"calorie = 4.184 * joule = cal",
	"electron_volt = 1.602176634e-19 * joule = eV",
	"watt = joule / second = W",
	"watt_hour = watt * hour = Wh",
	"horsepower = 550 * foot * pound_force / second = hp",

	// electromagnetism
	"coulomb = ampere * second = C",
	"volt = joule / coulomb = V",
	"ohm = volt / ampere = \u03a9",
	"siemens = ampere / volt = S",
	"farad = coulomb / volt = F",
	"weber = volt * second = Wb",
	"tesla = weber / meter ** 2 = T",
	"henry = weber / ampere = H",

	// temperature
	"degree_Celsius = kelvin; offset: 273.15 = degC = celsius = °C",
	"degree_Fahrenheit = 5 / 9 * kelvin; offset: 255.37222222222223 = degF = fahrenheit = °F",
	"degree_Rankine = 5 / 9 * kelvin = degR = rankine",

	// chemistry and photometry
	"katal = mole / second = kat",
	"molar = mole / liter",
	"lumen = candela * steradian = lm",
	"lux = lumen / meter ** 2 = lx",
}
