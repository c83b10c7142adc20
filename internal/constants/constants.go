package constants

const USER_AGENT = "riftrewind/0.1.0 (+https://github.com/Amund211/riftrewind)"
