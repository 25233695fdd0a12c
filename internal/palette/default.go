package palette

var stock = map[string]string{
	"Teal":   "rgb(0, 150, 150)",
	"Yellow": "rgb(190, 200, 0)",
	"Orange": "rgb(240, 150, 0)",
	"Blue":   "rgb(31, 119, 180)",
	"Red":    "rgb(214, 39, 40)",
	"Green":  "rgb(44, 160, 44)",
	"Purple": "rgb(148, 103, 189)",
	"Brown":  "rgb(140, 86, 75)",
	"Pink":   "rgb(227, 119, 194)",
	"Gray":   "rgb(127, 127, 127)",
	"Olive":  "rgb(188, 189, 34)",
	"Cyan":   "rgb(23, 190, 207)",
}

// Default returns the stock palette the editor offers in its color dropdowns.
func Default() Palette {
	p, err := New(stock)
	if err != nil {
		panic(err)
	}
	return p
}
