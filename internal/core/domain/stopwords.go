package domain

// englishStopwords are function words with no topical signal.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
	"but", "by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "either",
	"few", "for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"him", "his", "how", "if", "in", "into", "is", "it", "its", "itself", "just", "least", "less",
	"made", "make", "many", "may", "more", "most", "much", "must", "no", "nor", "not", "now", "of",
	"off", "on", "once", "one", "only", "or", "other", "otherwise", "our", "out", "over", "own",
	"per", "same", "she", "should", "so", "some", "such", "than", "that", "the", "their", "them",
	"then", "there", "these", "they", "this", "those", "through", "to", "too", "under", "until",
	"up", "upon", "very", "was", "we", "were", "what", "when", "where", "whether", "which", "while",
	"who", "whom", "why", "will", "with", "within", "without", "would", "you", "your",
}

// legislativeStopwords are drafting terms present in nearly every bill.
var legislativeStopwords = []string{
	"act", "acts", "amend", "amended", "amending", "amendment", "article", "assembly", "bill",
	"chapter", "code", "commencing", "effective", "enact", "enacted", "enacting", "follows",
	"general", "hereby", "herein", "hereof", "hereto", "house", "including", "law", "laws",
	"legislature", "paragraph", "provided", "provides", "provision", "provisions", "pursuant",
	"read", "relating", "relative", "repeal", "repealed", "section", "sections", "senate", "shall",
	"statute", "statutes", "subdivision", "subparagraph", "subsection", "thereof", "therein",
	"thereto", "title",
}

// DefaultStopwords returns the built-in stopword set, sorted and de-duplicated.
func DefaultStopwords() []string {
	words := make([]string, 0, len(englishStopwords)+len(legislativeStopwords))
	words = append(words, englishStopwords...)
	words = append(words, legislativeStopwords...)
	return Config{}.WithStopwords(words).Stopwords
}

// DefaultBoilerplatePatterns returns the built-in legislative boilerplate expressions.
// Patterns are matched case-insensitively against the raw text.
func DefaultBoilerplatePatterns() []string {
	return []string{
		// URLs
		`https?://\S+`,
		// Bill citation headers: H.B. 1234, SB 23, A.J.R. 5, HJR No. 7
		`\b[hsa]\.?\s?(?:[jc]\.?\s?)?[brm]\.?\s?(?:no\.?\s*)?\d+\b`,
		// Long-form citations: House Bill No. 12, Senate Joint Resolution 4
		`\b(?:house|senate|assembly)\s+(?:joint\s+|concurrent\s+)?(?:bill|resolution|memorial)\s+(?:no\.?\s*)?\d+\b`,
		// Public Act 102-0662, Public Law 117-169
		`\bpublic\s+(?:act|law)\s+(?:no\.?\s*)?\d[\d\-]*\b`,
		// Section references: § 12-3-4, §§ 2.1
		`§+\s*\d[\w.\-:()]*`,
		// Structural markers: Section 2., Sec. 14(b), Chapter 12, Article IV
		`\b(?:section|sec|article|art|chapter|ch|title|part|subsection|subdivision|paragraph)\.?\s+(?:\d+|[ivx]+)\b[\w.\-()]*`,
		// Enumerators: (a), (12), (iv)
		`\(\s*[a-z0-9]{1,4}\s*\)`,
	}
}
