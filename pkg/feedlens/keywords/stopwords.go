package keywords

// DefaultStopwords is a general English stopword list extended with filler
// words common in forum posts.
var DefaultStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "aren't", "as", "at", "be", "because", "been", "before", "being", "below", "between",
	"both", "but", "by", "can", "can't", "cannot", "could", "couldn't", "did", "didn't", "do",
	"does", "doesn't", "doing", "don't", "down", "during", "each", "else", "etc", "even", "ever",
	"every", "few", "for", "from", "further", "get", "gets", "getting", "got", "had", "hadn't",
	"has", "hasn't", "have", "haven't", "having", "he", "her", "here", "hers", "herself", "hi",
	"hello", "hey", "him", "himself", "his", "how", "however", "i", "i'm", "i've", "if", "in",
	"into", "is", "isn't", "it", "it's", "its", "itself", "just", "let", "like", "me", "more",
	"most", "much", "must", "my", "myself", "need", "no", "nor", "not", "now", "of", "off", "on",
	"once", "one", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"please", "quite", "really", "same", "see", "she", "should", "shouldn't", "so", "some",
	"still", "such", "than", "thank", "thanks", "that", "that's", "the", "their", "theirs",
	"them", "themselves", "then", "there", "there's", "these", "they", "this", "those",
	"through", "to", "too", "try", "trying", "under", "until", "up", "us", "use", "used",
	"using", "very", "want", "was", "wasn't", "way", "we", "we're", "we've", "well", "were",
	"weren't", "what", "when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"without", "won't", "would", "wouldn't", "yes", "yet", "you", "you're", "your", "yours",
	"yourself", "yourselves", "anyone", "someone", "something", "anything", "thing", "things",
	"know", "think", "make", "able", "many", "may", "might", "new", "way", "time",
}
