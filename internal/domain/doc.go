// Package domain models gridded environmental datasets (sea-surface
// temperature, dust column mass) and the tabular point data derived from them.
//
// # Coordinate Conventions
//
// Longitude:
//
//	Source grids (NOAA OISST, MERRA-2) publish longitude in [0, 360).
//	Web maps expect [-180, 180). [NormalizeLongitude] maps each value with
//	lon' = (lon + 180) mod 360 - 180 and reorders grid columns by lon'.
//	Ties keep their original column order. Already-normalized input is
//	returned unchanged.
//
// Latitude:
//
//	Image rows are drawn bottom-up (row 0 at the southern edge), so latitude
//	must be non-decreasing. Many products store it north-to-south;
//	[SortLatitude] reorders the rows.
//
// # Missing Data
//
//	Missing, masked, and fill-value samples are NaN in a [Grid]. NaN cells are
//	never drawn and never contribute to the color range. A grid with no
//	finite cell is rejected with [ErrEmptyDataset].
//
// # Tabular Data
//
//	Uploaded CSVs have arbitrary headers. Column names are lowercased once on
//	read; latitude resolves from "lat" then "latitude", longitude from "lon"
//	then "longitude". Rows with a null in any column of interest are dropped
//	before sampling. Tables larger than the point cap are downsampled with a
//	fixed seed ([DefaultSampleSeed]) so identical input gives identical output
//	from this implementation. Selection is not bit-compatible with other
//	random number generators.
//
// # Grid Reconstruction
//
//	[ReconstructGrid] rebuilds a dense grid from (lat, lon, value) records.
//	Axes are the exact-equality unique values of each coordinate, sorted.
//	Cell lookup uses hash maps, so reconstruction is linear in the number of
//	records. Duplicate coordinates resolve to the last record in input order.
package domain
