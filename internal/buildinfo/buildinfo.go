package buildinfo

const (
	ProjectName    = "wordlebot"
	GithubURL      = "https://github.com/bloops-games/wordlebot"
	BotFatherURL   = "https://t.me/botfather"
	DefaultVersion = "dev"
)

var Graffiti = `
 _    _               _ _      _           _
| |  | |             | | |    | |         | |
| |  | | ___  _ __ __| | | ___| |__   ___ | |_
| |/\| |/ _ \| '__/ _' | |/ _ \ '_ \ / _ \| __|
\  /\  / (_) | | | (_| | |  __/ |_) | (_) | |_
 \/  \/ \___/|_|  \__,_|_|\___|_.__/ \___/ \__|
`

var GreetingCLI = "%s %s\nsource: %s\n\n"
