package generator

import "learnitquick/internal/domain"

// Info describes a mode for the game menu.
type Info struct {
	Mode        domain.Mode `json:"mode"`
	Title       string      `json:"title"`
	Icon        string      `json:"icon"`
	Description string      `json:"description"`
}

var modeInfo = map[domain.Mode]Info{
	domain.ModeTables:         {Title: "Times Tables", Icon: "✖️", Description: "Master multiplication tables 1-10"},
	domain.ModeComparison:     {Title: "Compare Numbers", Icon: "⚖️", Description: "Learn less than, greater than, equal"},
	domain.ModeAddition:       {Title: "Addition", Icon: "➕", Description: "Practice adding numbers"},
	domain.ModeSubtraction:    {Title: "Subtraction", Icon: "➖", Description: "Practice taking away numbers"},
	domain.ModeMultiplication: {Title: "Word Problems", Icon: "🧮", Description: "Solve fun multiplication stories"},
	domain.ModeCarryAddition:  {Title: "Carry Forward", Icon: "🔢", Description: "Addition with carrying over"},
	domain.ModeCounting:       {Title: "Counting", Icon: "🔢", Description: "Count objects and find totals"},
	domain.ModeNumberSequence: {Title: "Number Patterns", Icon: "📊", Description: "Find the missing number"},
}

// ModeInfo returns the menu entry for mode.
func ModeInfo(mode domain.Mode) (Info, bool) {
	info, ok := modeInfo[mode]
	info.Mode = mode
	return info, ok
}

// Catalogue lists every mode in menu order.
func Catalogue() []Info {
	infos := make([]Info, 0, len(domain.Modes))
	for _, m := range domain.Modes {
		info, _ := ModeInfo(m)
		infos = append(infos, info)
	}
	return infos
}
