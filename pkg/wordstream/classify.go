package wordstream

// Membership tables. Accented forms cover the Latin-1 supplement block.
var (
	vowels = makeSet(
		'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U',
		'à', 'á', 'â', 'ã', 'è', 'é', 'ê', 'ì', 'í', 'î',
		'ò', 'ó', 'ô', 'õ', 'ù', 'ú', 'û',
		'À', 'Á', 'Â', 'Ã', 'È', 'É', 'Ê', 'Ì', 'Í', 'Î',
		'Ò', 'Ó', 'Ô', 'Õ', 'Ù', 'Ú', 'Û',
	)

	consonants = makeSet(
		'b', 'c', 'd', 'f', 'g', 'h', 'j', 'k', 'l', 'm', 'n',
		'p', 'q', 'r', 's', 't', 'v', 'w', 'x', 'y', 'z',
		'B', 'C', 'D', 'F', 'G', 'H', 'J', 'K', 'L', 'M', 'N',
		'P', 'Q', 'R', 'S', 'T', 'V', 'W', 'X', 'Y', 'Z',
		'ç', 'Ç',
	)

	splits = makeSet(
		' ', '\t', '\n', '-', '"', '“', '”', '[', ']', '{', '}',
		'(', ')', '.', ',', ':', ';', '?', '!', '–', '—', '…',
		'«', '»', '`',
	)

	apostrophes = makeSet('\'', '‘', '’')
)

func makeSet(points ...rune) map[rune]struct{} {
	set := make(map[rune]struct{}, len(points))
	for _, p := range points {
		set[p] = struct{}{}
	}

	return set
}

// IsVowel reports whether c is a vowel.
func IsVowel(c rune) bool {
	_, ok := vowels[c]
	return ok
}

// IsConsonant reports whether c is a consonant.
func IsConsonant(c rune) bool {
	_, ok := consonants[c]
	return ok
}

// IsSplit reports whether c separates words.
func IsSplit(c rune) bool {
	_, ok := splits[c]
	return ok
}

// IsApostrophe reports whether c is an apostrophe-like mark.
func IsApostrophe(c rune) bool {
	_, ok := apostrophes[c]
	return ok
}
