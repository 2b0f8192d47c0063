package importer

import (
	"strings"

	"expensetracker/internal/core"
)

// keywords maps lower-case merchant fragments to categories. The first
// matching rule wins.
var keywords = []struct {
	fragment string
	category core.Category
}{
	{"restaurant", core.Food},
	{"cafe", core.Food},
	{"coffee", core.Food},
	{"starbucks", core.Food},
	{"pizza", core.Food},
	{"grocery", core.Food},
	{"whole foods", core.Food},
	{"market", core.Food},
	{"swiggy", core.Food},
	{"zomato", core.Food},
	{"uber", core.Travel},
	{"lyft", core.Travel},
	{"ola", core.Travel},
	{"airline", core.Travel},
	{"airways", core.Travel},
	{"rail", core.Travel},
	{"taxi", core.Travel},
	{"fuel", core.Travel},
	{"shell", core.Travel},
	{"parking", core.Travel},
	{"hotel", core.Travel},
	{"electric", core.Bills},
	{"utility", core.Bills},
	{"water", core.Bills},
	{"internet", core.Bills},
	{"mobile", core.Bills},
	{"insurance", core.Bills},
	{"rent", core.Bills},
	{"netflix", core.Bills},
	{"spotify", core.Bills},
	{"amazon", core.Shopping},
	{"flipkart", core.Shopping},
	{"target", core.Shopping},
	{"walmart", core.Shopping},
	{"store", core.Shopping},
	{"mall", core.Shopping},
}

// Categorize guesses a category from a merchant name, defaulting to Others.
func Categorize(title string) core.Category {
	t := strings.ToLower(title)
	for _, k := range keywords {
		if containsWord(t, k.fragment) {
			return k.category
		}
	}
	return core.Others
}

// containsWord matches fragment at a word start so that "ola" does not
// match "cola".
func containsWord(s, fragment string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], fragment)
		if j < 0 {
			return false
		}
		at := i + j
		if at == 0 || !isLetter(s[at-1]) {
			return true
		}
		i = at + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
