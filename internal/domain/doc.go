// Package domain models the observational data the four tools work with:
// vertical soundings, SPC local storm reports, and NWS warning polygons.
//
// # Soundings
//
// A [Profile] stores one vertical sounding as parallel slices ordered
// surface-first, so pressure is strictly decreasing. Two sources produce them:
//
//	ACARS:  automated aircraft observations archived by OU SHARP at
//	        https://sharp.weather.ou.edu/soundings/acars/. Ascent/descent
//	        profiles near an airport, identified by a 3-letter site code and
//	        an HHMM observation time.
//	RAOB:   balloon radiosonde observations served by the University of
//	        Wyoming archive. Identified by a 3-letter site code or 5-digit
//	        WMO number, launched at 00Z and 12Z.
//
// Units follow the raw products: pressure hPa, height m, temperature and
// dewpoint °C, wind direction degrees from true north, wind speed kt.
//
// # Storm reports
//
// Storm reports originate from the NOAA Storm Prediction Center (SPC) daily
// CSV files at https://www.spc.noaa.gov/climo/reports/. One file per event
// type and convective day (12Z–12Z), named yymmdd_rpts_{torn,hail,wind}.csv.
//
// Time format:
//
//	HHMM in 24-hour notation, e.g. "1510" = 15:10 UTC.
//	Three-digit values are zero-padded: "930" → "0930".
//	The date portion comes from the CSV filename's convective day.
//
// Magnitude encoding (varies by event type, sometimes inconsistent in source
// data):
//
//	Hail ("Size" column):
//	  - Hundredths of inches: 175 = 1.75 inches
//	  - Occasionally inches as a decimal: 1.75
//	  - Heuristic: values ≥ 10 are assumed to be hundredths because the
//	    largest hail ever recorded in the US was ~8 inches.
//	Tornado ("F_Scale" column):
//	  - Enhanced Fujita scale integer 0–5, may carry an "EF" or "F" prefix,
//	    which is stripped during parsing.
//	Wind ("Speed" column):
//	  - Miles per hour as an integer: 65 = 65 mph.
//
// Unknown values:
//
//	"UNK" is the NOAA sentinel for unknown or unreported magnitude. Such
//	reports are kept with MagnitudeKnown=false and plot in their base
//	category.
//
// NWS office codes:
//
//	Weather Forecast Office (WFO) codes appear in parentheses at the end of
//	comment strings: "Large hail reported. (OUN)" → office code "OUN"
//	(Norman, OK). Codes are 3–5 uppercase letters.
//
// # Warnings
//
// A [Warning] is one storm-based warning polygon from the Iowa Environmental
// Mesonet "Cow" verification API. Warnings carry the two-letter VTEC
// phenomena code (TO tornado, SV severe thunderstorm, FF flash flood, MA
// marine, DS dust storm) and the issuing WFO. Polygon outlines are kept in
// lon/lat order as served.
package domain
