package nimbus

// Version is the library release, carried in the User-Agent header of every
// request.
const Version = "1.2.0"
