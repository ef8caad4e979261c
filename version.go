package lars

// Version is the current version of the go-lars library
const Version = "0.3.0"
