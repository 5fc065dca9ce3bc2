package models

// SiteName is shown in page titles and the header.
const SiteName = "StrataSched"
