package utils

const ShortDashDateLayout = "2006-01-02"

// AssetCurrencyUSD is the only quote currency; portfolios are valued in USD.
const AssetCurrencyUSD = "usd"
