// Package llmintent asks a language model to classify utterances into the
// assistant's command vocabulary and to describe page content.
package llmintent

import (
	"strconv"
	"strings"

	"github.com/entrhq/voxbrowse/pkg/command"
)

// Params are the string parameters of a resolved command.
type Params map[string]string

// Command is one entry of the vocabulary the model chooses from.
type Command struct {
	Name     string
	Examples []string
	build    func(Params) command.Intent
}

// Vocabulary is the closed set of command names offered to the model, in prompt order.
var Vocabulary = []Command{
	{
		Name:     "Open website",
		Examples: []string{"Open Google", "Go to YouTube", "Visit Wikipedia"},
		build:    func(p Params) command.Intent { return command.OpenWebsite{Target: p["website"]} },
	},
	{
		Name:     "Search for",
		Examples: []string{"Search for weather forecast", "Look up news about technology"},
		build:    func(p Params) command.Intent { return command.Search{Query: p["query"]} },
	},
	{
		Name:     "Scroll down/up",
		Examples: []string{"Scroll down", "Scroll up", "Scroll down a bit"},
		build: func(p Params) command.Intent {
			return command.Scroll{Direction: direction(p["direction"], command.DirectionUp, command.DirectionDown)}
		},
	},
	{
		Name:     "Click on element",
		Examples: []string{"Click sign in", "Click on first link", "Click submit button"},
		build:    func(p Params) command.Intent { return command.Click{Target: p["element"]} },
	},
	{
		Name:     "Go back/forward",
		Examples: []string{"Go back", "Previous page", "Go forward", "Next page"},
		build: func(p Params) command.Intent {
			return command.Navigate{Direction: direction(p["direction"], command.DirectionForward, command.DirectionBack)}
		},
	},
	{
		Name:     "Refresh page",
		Examples: []string{"Refresh page", "Reload", "Refresh the site"},
		build:    func(Params) command.Intent { return command.Refresh{} },
	},
	{
		Name:     "Read page aloud",
		Examples: []string{"Read page", "Read this to me", "Read article", "Read aloud"},
		build:    func(Params) command.Intent { return command.ReadAloud{} },
	},
	{
		Name:     "Stop reading",
		Examples: []string{"Stop reading", "Stop", "Be quiet", "Silence"},
		build:    func(Params) command.Intent { return command.StopReading{} },
	},
	{
		Name:     "Set favorite category",
		Examples: []string{"Set favorite videos to YouTube", "When I say music use Spotify", "For shopping use Amazon"},
		build: func(p Params) command.Intent {
			return command.SetFavorite{Category: strings.ToLower(p["category"]), Site: p["website"]}
		},
	},
	{
		Name:     "Open category website",
		Examples: []string{"Open category shopping", "I want to watch videos", "I'm in the mood for shopping"},
		build:    func(p Params) command.Intent { return command.OpenCategory{Category: strings.ToLower(p["category"])} },
	},
	{
		Name:     "Show favorites",
		Examples: []string{"Show favorites", "List my favorites", "What are my favorites"},
		build:    func(Params) command.Intent { return command.ListFavorites{} },
	},
	{
		Name:     "Close browser",
		Examples: []string{"Close browser", "Exit", "Quit", "Close"},
		build:    func(Params) command.Intent { return command.CloseBrowser{} },
	},
	{
		Name:     "Describe page",
		Examples: []string{"Tell me what's on this page", "Describe this page", "What can you see?"},
		build:    func(Params) command.Intent { return command.DescribePage{} },
	},
	{
		Name:     "Describe products",
		Examples: []string{"Tell me about the products", "What products are available", "Tell me about products on this page"},
		build:    content("products"),
	},
	{
		Name:     "Describe videos",
		Examples: []string{"Tell me about the videos", "What videos are on this page", "Describe the videos"},
		build:    content("videos"),
	},
	{
		Name:     "Describe images",
		Examples: []string{"Describe the images", "What images do you see", "Tell me about the pictures"},
		build:    content("images"),
	},
	{
		Name:     "Describe music",
		Examples: []string{"Tell me about the music", "What songs are on this page", "Describe the tracks"},
		build:    content("music"),
	},
	{
		Name:     "Search YouTube",
		Examples: []string{"Search YouTube for cat videos", "Find music videos on YouTube", "YouTube search for cooking recipes"},
		build:    func(p Params) command.Intent { return command.YoutubeSearch{Query: p["query"]} },
	},
	{
		Name:     "Describe video number",
		Examples: []string{"Tell me about video number 2", "What's video 3 about", "Describe the first video"},
		build:    func(p Params) command.Intent { return command.YoutubeDescribe{Position: position(p["position"])} },
	},
	{
		Name:     "Play video number",
		Examples: []string{"Play video number 2", "Play the third video", "Start video 1"},
		build:    func(p Params) command.Intent { return command.YoutubePlay{Position: position(p["position"])} },
	},
	{
		Name:     "List videos",
		Examples: []string{"List the videos", "What videos did you find", "Summarize search results"},
		build:    func(Params) command.Intent { return command.YoutubeList{} },
	},
}

// Lookup finds a vocabulary entry by name, ignoring case and surrounding space.
func Lookup(name string) (Command, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Vocabulary {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Command{}, false
}

// Build turns parameters into the command's intent. Missing parameters leave
// the corresponding fields empty.
func (c Command) Build(p Params) command.Intent {
	if p == nil {
		p = Params{}
	}
	return c.build(p)
}

func content(kind string) func(Params) command.Intent {
	return func(Params) command.Intent { return command.DescribeContent{Content: kind} }
}

// direction returns alt when value mentions it, otherwise def.
func direction(value, alt, def string) string {
	if strings.Contains(strings.ToLower(value), alt) {
		return alt
	}
	return def
}

var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
}

// position parses "2", "2.0" or "second". Unparseable input yields 0.
func position(value string) int {
	value = strings.ToLower(strings.TrimSpace(value))
	if n, ok := ordinals[value]; ok {
		return n
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}
