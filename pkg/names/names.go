// Package names generates decorative tab names (emoji + adjective +
// noun) deterministically, so every sidebar instance in a session labels
// the same tab the same way without coordinating.
package names

var emojis = []string{
	"🌟", "🚀", "🎨", "🌈", "⚡", "🔥", "❄️", "🌸", "🍀", "🦄",
	"🐉", "🦋", "🐢", "🦊", "🐙", "🦜", "🌺", "🍄", "🌙", "☀️",
	"💎", "🏔️", "🌊", "🍃", "🎭", "🎪", "🎯", "🎲", "🔮", "💫",
	"🎸", "🎹", "🎺", "🎷", "🥁", "🎵", "🎶", "🎼", "🎤", "🎧",
	"📚", "📖", "💡", "🔍", "🔬", "🔭", "🔧", "⚙️", "🗝️", "🛡️",
	"🌱", "🌿", "🍁", "🍂", "🌾", "🌵", "🌴", "🌲", "🌳", "🌷",
	"🏖️", "🏝️", "🏜️", "🏞️", "🗻", "🌋", "🏛️", "🏰", "🗼", "🌉",
	"🦁", "🐯", "🐨", "🐼", "🦘", "🦓", "🦒", "🦌", "🦚", "🦩",
	"🍎", "🍊", "🍋", "🍓", "🍇", "🍉", "🥝", "🍑", "🍒", "🥭",
	"⭐", "✨", "🌠", "☄️", "🌌", "🪐", "🛸", "🚁", "✈️", "🛩️",
}

var adjectives = []string{
	"happy", "bright", "swift", "gentle", "mighty", "clever", "brave", "calm",
	"eager", "jolly", "keen", "lively", "merry", "proud", "quirky", "radiant",
	"serene", "vivid", "witty", "zesty", "cosmic", "mystic", "noble", "ornate",
	"plucky", "rustic", "sleek", "unique", "valiant", "whimsical", "agile", "bold",
	"crisp", "daring", "elegant", "fierce", "graceful", "humble", "intense", "jovial",
	"kindly", "luminous", "majestic", "nimble", "peaceful", "quick", "royal", "spirited",
	"tranquil", "upbeat", "vibrant", "wise", "zealous", "artistic", "bouncy", "charming",
	"dreamy", "ethereal", "friendly", "gleaming", "heroic", "inspired", "joyful", "kinetic",
}

var nouns = []string{
	"fox", "star", "moon", "wave", "flame", "storm", "cloud", "river",
	"mountain", "forest", "ocean", "desert", "meadow", "canyon", "glacier", "aurora",
	"comet", "nebula", "phoenix", "dragon", "falcon", "leopard", "dolphin", "butterfly",
	"crystal", "prism", "beacon", "horizon", "cascade", "zenith", "adventure", "breeze",
	"cosmos", "dream", "echo", "fountain", "garden", "harmony", "island", "journey",
	"kaleidoscope", "lighthouse", "melody", "nova", "oasis", "paradise", "quest", "rainbow",
	"sanctuary", "twilight", "universe", "valley", "whisper", "zephyr", "arbor", "bloom",
	"citadel", "dawn", "ember", "frost", "glow", "haven", "iris", "jewel",
}

// mix is a splitmix64 step: cheap, stateless, good enough diffusion for
// picking words.
func mix(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Generate builds the decorative name for a tab position under a given
// session seed. The emoji cycles by position so each tab keeps a unique
// glyph up to the size of the emoji table.
func Generate(position int, sessionSeed uint64) string {
	emoji := emojis[position%len(emojis)]
	seed := mix(sessionSeed + uint64(position))
	adj := adjectives[mix(seed)%uint64(len(adjectives))]
	noun := nouns[mix(mix(seed))%uint64(len(nouns))]
	return emoji + " " + adj + " " + noun
}

// Seed derives the session seed from the session name, so every
// instance in the same session agrees without coordinating.
func Seed(sessionName string) uint64 {
	var seed uint64
	for i := 0; i < len(sessionName); i++ {
		seed += uint64(sessionName[i]) * uint64(i+1)
		seed = mix(seed)
	}
	return seed
}

// Cache memoizes generated names per position so a tab's name never
// shifts while the session lives.
type Cache struct {
	names map[int]string
	seed  uint64
}

func NewCache(sessionName string) *Cache {
	return &Cache{
		names: make(map[int]string),
		seed:  Seed(sessionName),
	}
}

// Get returns the memoized name for a position, generating it on first
// use.
func (c *Cache) Get(position int) string {
	if name, ok := c.names[position]; ok {
		return name
	}
	name := Generate(position, c.seed)
	c.names[position] = name
	return name
}
