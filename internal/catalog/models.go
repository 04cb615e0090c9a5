package catalog

type Library struct {
	ID   int
	Path string
}

type Movie struct {
	ID        int
	LibraryID int
	Library   Library
	Directory string
	File      string
}

type Show struct {
	ID        int
	LibraryID int
	Library   Library
}

type Season struct {
	ID     int
	ShowID int
	Show   Show
}

type Episode struct {
	ID       int
	SeasonID int
	Season   Season
	Path     string
}

type SubtitleFile struct {
	ID        int
	Language  string
	Path      string
	MovieID   *int
	EpisodeID *int
}

func (SubtitleFile) TableName() string {
	return "subtitles"
}
