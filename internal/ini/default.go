package ini

// DefaultDocument is the skeleton written by CreateDefault.
const DefaultDocument = `[Path]
NIGHT = ./night.jpg
DAY = ./day.jpg
[Time]
FROM = 7
TO = 19
`
