package corpus

import "github.com/investiq-ai/investiq/engine/domain"

// SeedCompanies is a fallback list of large S&P 500 constituents, used when
// no company dataset is available at startup.
func SeedCompanies() []domain.CompanyRecord {
	return []domain.CompanyRecord{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Information Technology", SubIndustry: "Technology Hardware, Storage & Peripherals", Headquarters: "Cupertino, California", DateAdded: "1982-11-30", Founded: "1976"},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Information Technology", SubIndustry: "Systems Software", Headquarters: "Redmond, Washington", DateAdded: "1994-06-01", Founded: "1975"},
		{Symbol: "GOOGL", Name: "Alphabet Inc. (Class A)", Sector: "Communication Services", SubIndustry: "Interactive Media & Services", Headquarters: "Mountain View, California", DateAdded: "2014-04-03", Founded: "1998"},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary", SubIndustry: "Broadline Retail", Headquarters: "Seattle, Washington", DateAdded: "2005-11-18", Founded: "1994"},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Information Technology", SubIndustry: "Semiconductors", Headquarters: "Santa Clara, California", DateAdded: "2001-11-30", Founded: "1993"},
		{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Communication Services", SubIndustry: "Interactive Media & Services", Headquarters: "Menlo Park, California", DateAdded: "2013-12-23", Founded: "2004"},
		{Symbol: "BRK-B", Name: "Berkshire Hathaway Inc.", Sector: "Financials", SubIndustry: "Multi-Sector Holdings", Headquarters: "Omaha, Nebraska", DateAdded: "2010-02-16", Founded: "1839"},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financials", SubIndustry: "Diversified Banks", Headquarters: "New York City, New York", DateAdded: "1975-06-30", Founded: "1799"},
		{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Consumer Discretionary", SubIndustry: "Automobile Manufacturers", Headquarters: "Austin, Texas", DateAdded: "2020-12-21", Founded: "2003"},
		{Symbol: "V", Name: "Visa Inc.", Sector: "Financials", SubIndustry: "Transaction & Payment Processing Services", Headquarters: "San Francisco, California", DateAdded: "2009-12-21", Founded: "1958"},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Health Care", SubIndustry: "Pharmaceuticals", Headquarters: "New Brunswick, New Jersey", DateAdded: "1973-06-30", Founded: "1886"},
		{Symbol: "WMT", Name: "Walmart Inc.", Sector: "Consumer Staples", SubIndustry: "Consumer Staples Merchandise Retail", Headquarters: "Bentonville, Arkansas", DateAdded: "1982-08-31", Founded: "1962"},
		{Symbol: "UNH", Name: "UnitedHealth Group", Sector: "Health Care", SubIndustry: "Managed Health Care", Headquarters: "Minnetonka, Minnesota", DateAdded: "1994-07-01", Founded: "1977"},
		{Symbol: "XOM", Name: "Exxon Mobil Corporation", Sector: "Energy", SubIndustry: "Integrated Oil & Gas", Headquarters: "Spring, Texas", DateAdded: "1957-03-04", Founded: "1999"},
		{Symbol: "PG", Name: "Procter & Gamble", Sector: "Consumer Staples", SubIndustry: "Household Products", Headquarters: "Cincinnati, Ohio", DateAdded: "1957-03-04", Founded: "1837"},
		{Symbol: "MA", Name: "Mastercard Inc.", Sector: "Financials", SubIndustry: "Transaction & Payment Processing Services", Headquarters: "Purchase, New York", DateAdded: "2008-07-18", Founded: "1966"},
		{Symbol: "HD", Name: "The Home Depot", Sector: "Consumer Discretionary", SubIndustry: "Home Improvement Retail", Headquarters: "Atlanta, Georgia", DateAdded: "1988-03-31", Founded: "1978"},
		{Symbol: "CVX", Name: "Chevron Corporation", Sector: "Energy", SubIndustry: "Integrated Oil & Gas", Headquarters: "San Ramon, California", DateAdded: "1957-03-04", Founded: "1879"},
		{Symbol: "LLY", Name: "Eli Lilly and Company", Sector: "Health Care", SubIndustry: "Pharmaceuticals", Headquarters: "Indianapolis, Indiana", DateAdded: "1970-08-31", Founded: "1876"},
		{Symbol: "ABBV", Name: "AbbVie Inc.", Sector: "Health Care", SubIndustry: "Pharmaceuticals", Headquarters: "North Chicago, Illinois", DateAdded: "2012-12-31", Founded: "2013"},
	}
}
