package bible

// oldTestamentBooks is the fixed 39-name Old Testament membership set.
// Book names match the KJV corpus spelling exactly.
var oldTestamentBooks = map[string]bool{
	"Genesis": true, "Exodus": true, "Leviticus": true, "Numbers": true, "Deuteronomy": true,
	"Joshua": true, "Judges": true, "Ruth": true, "1 Samuel": true, "2 Samuel": true,
	"1 Kings": true, "2 Kings": true, "1 Chronicles": true, "2 Chronicles": true,
	"Ezra": true, "Nehemiah": true, "Esther": true, "Job": true, "Psalms": true, "Proverbs": true,
	"Ecclesiastes": true, "Song of Solomon": true, "Isaiah": true, "Jeremiah": true,
	"Lamentations": true, "Ezekiel": true, "Daniel": true, "Hosea": true, "Joel": true,
	"Amos": true, "Obadiah": true, "Jonah": true, "Micah": true, "Nahum": true, "Habakkuk": true,
	"Zephaniah": true, "Haggai": true, "Zechariah": true, "Malachi": true,
}

// bookNumbers assigns each of the 66 canonical book names its traditional
// position, 1 (Genesis) through 66 (Revelation).
var bookNumbers = map[string]int{
	// Old Testament
	"Genesis": 1, "Exodus": 2, "Leviticus": 3, "Numbers": 4, "Deuteronomy": 5,
	"Joshua": 6, "Judges": 7, "Ruth": 8, "1 Samuel": 9, "2 Samuel": 10,
	"1 Kings": 11, "2 Kings": 12, "1 Chronicles": 13, "2 Chronicles": 14,
	"Ezra": 15, "Nehemiah": 16, "Esther": 17, "Job": 18, "Psalms": 19,
	"Proverbs": 20, "Ecclesiastes": 21, "Song of Solomon": 22, "Isaiah": 23,
	"Jeremiah": 24, "Lamentations": 25, "Ezekiel": 26, "Daniel": 27,
	"Hosea": 28, "Joel": 29, "Amos": 30, "Obadiah": 31, "Jonah": 32,
	"Micah": 33, "Nahum": 34, "Habakkuk": 35, "Zephaniah": 36,
	"Haggai": 37, "Zechariah": 38, "Malachi": 39,

	// New Testament
	"Matthew": 40, "Mark": 41, "Luke": 42, "John": 43, "Acts": 44,
	"Romans": 45, "1 Corinthians": 46, "2 Corinthians": 47, "Galatians": 48,
	"Ephesians": 49, "Philippians": 50, "Colossians": 51, "1 Thessalonians": 52,
	"2 Thessalonians": 53, "1 Timothy": 54, "2 Timothy": 55, "Titus": 56,
	"Philemon": 57, "Hebrews": 58, "James": 59, "1 Peter": 60, "2 Peter": 61,
	"1 John": 62, "2 John": 63, "3 John": 64, "Jude": 65, "Revelation": 66,
}

// Testament reports the Old/New grouping for a book name. Names outside the
// 39-book Old Testament set map to "New", including unrecognized names —
// pair with BookNumber() == 0 to detect a data-quality problem in a source
// corpus.
func Testament(book string) string {
	if oldTestamentBooks[book] {
		return "Old"
	}
	return "New"
}

// BookNumber returns the canonical 1..66 position for a book name, or 0 if
// the name is not one of the 66 canonical books.
func BookNumber(book string) int {
	return bookNumbers[book]
}
