package model

// Version is the released version, checked against GitHub by --update.
const Version = "0.4.1"
