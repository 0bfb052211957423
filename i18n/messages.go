package i18n

var dictionaries = map[string]map[string]string{
	"en": {
		"accepted":            "The :attribute field must be accepted.",
		"accepted_if":         "The :attribute field must be accepted when :other is :value.",
		"alpha":               "The :attribute field must only contain letters.",
		"alpha_dash":          "The :attribute field must only contain letters, numbers, dashes, and underscores.",
		"alpha_num":           "The :attribute field must only contain letters and numbers.",
		"array":               "The :attribute field must be an array.",
		"between.array":       "The :attribute field must have between :min and :max items.",
		"between.numeric":     "The :attribute field must be between :min and :max.",
		"between.string":      "The :attribute field must be between :min and :max characters.",
		"boolean":             "The :attribute field must be true or false.",
		"date":                "The :attribute field must be a valid date.",
		"date_format":         "The :attribute field must match the format :format.",
		"declined":            "The :attribute field must be declined.",
		"different":           "The :attribute field and :other must be different.",
		"digits":              "The :attribute field must be :digits digits.",
		"digits_between":      "The :attribute field must be between :min and :max digits.",
		"email":               "The :attribute field must be a valid email address.",
		"ends_with":           "The :attribute field must end with one of the following: :values.",
		"filled":              "The :attribute field must have a value.",
		"gt.array":            "The :attribute field must have more than :value items.",
		"gt.numeric":          "The :attribute field must be greater than :value.",
		"gt.string":           "The :attribute field must be greater than :value characters.",
		"gte.array":           "The :attribute field must have :value items or more.",
		"gte.numeric":         "The :attribute field must be greater than or equal to :value.",
		"gte.string":          "The :attribute field must be greater than or equal to :value characters.",
		"in":                  "The selected :attribute is invalid.",
		"integer":             "The :attribute field must be an integer.",
		"json":                "The :attribute field must be a valid JSON string.",
		"lt.array":            "The :attribute field must have less than :value items.",
		"lt.numeric":          "The :attribute field must be less than :value.",
		"lt.string":           "The :attribute field must be less than :value characters.",
		"lte.array":           "The :attribute field must not have more than :value items.",
		"lte.numeric":         "The :attribute field must be less than or equal to :value.",
		"lte.string":          "The :attribute field must be less than or equal to :value characters.",
		"max.array":           "The :attribute field must not have more than :max items.",
		"max.numeric":         "The :attribute field must not be greater than :max.",
		"max.string":          "The :attribute field must not be greater than :max characters.",
		"min.array":           "The :attribute field must have at least :min items.",
		"min.numeric":         "The :attribute field must be at least :min.",
		"min.string":          "The :attribute field must be at least :min characters.",
		"not_in":              "The selected :attribute is invalid.",
		"not_regex":           "The :attribute field format is invalid.",
		"numeric":             "The :attribute field must be a number.",
		"present":             "The :attribute field must be present.",
		"regex":               "The :attribute field format is invalid.",
		"required":            "The :attribute field is required.",
		"required_array_keys": "The :attribute field must contain entries for: :values.",
		"required_if":         "The :attribute field is required when :other is :value.",
		"required_with":       "The :attribute field is required when :values is present.",
		"same":                "The :attribute field must match :other.",
		"size.array":          "The :attribute field must contain :size items.",
		"size.numeric":        "The :attribute field must be :size.",
		"size.string":         "The :attribute field must be :size characters.",
		"starts_with":         "The :attribute field must start with one of the following: :values.",
		"string":              "The :attribute field must be a string.",
		"url":                 "The :attribute field must be a valid URL.",
		"uuid":                "The :attribute field must be a valid UUID.",
	},
	"ja": {
		"accepted":            ":attributeを承認してください。",
		"accepted_if":         ":otherが:valueの場合、:attributeを承認してください。",
		"alpha":               ":attributeは英字のみ使用できます。",
		"alpha_dash":          ":attributeは英数字、ハイフン、アンダースコアのみ使用できます。",
		"alpha_num":           ":attributeは英数字のみ使用できます。",
		"array":               ":attributeは配列でなければなりません。",
		"between.array":       ":attributeは:min個から:max個の間で指定してください。",
		"between.numeric":     ":attributeは:minから:maxの間で指定してください。",
		"between.string":      ":attributeは:min文字から:max文字の間で指定してください。",
		"boolean":             ":attributeはtrueかfalseを指定してください。",
		"date":                ":attributeは正しい日付ではありません。",
		"date_format":         ":attributeは:format形式で指定してください。",
		"declined":            ":attributeを拒否してください。",
		"different":           ":attributeと:otherは異なる値を指定してください。",
		"digits":              ":attributeは:digits桁で指定してください。",
		"digits_between":      ":attributeは:min桁から:max桁の間で指定してください。",
		"email":               ":attributeは有効なメールアドレスではありません。",
		"ends_with":           ":attributeは次のいずれかで終わる必要があります: :values",
		"filled":              ":attributeに値を指定してください。",
		"gt.array":            ":attributeは:value個より多く指定してください。",
		"gt.numeric":          ":attributeは:valueより大きくなければなりません。",
		"gt.string":           ":attributeは:value文字より多く指定してください。",
		"gte.array":           ":attributeは:value個以上指定してください。",
		"gte.numeric":         ":attributeは:value以上でなければなりません。",
		"gte.string":          ":attributeは:value文字以上で指定してください。",
		"in":                  "選択された:attributeは正しくありません。",
		"integer":             ":attributeは整数で指定してください。",
		"json":                ":attributeは有効なJSON文字列で指定してください。",
		"lt.array":            ":attributeは:value個より少なく指定してください。",
		"lt.numeric":          ":attributeは:valueより小さくなければなりません。",
		"lt.string":           ":attributeは:value文字より少なく指定してください。",
		"lte.array":           ":attributeは:value個以下で指定してください。",
		"lte.numeric":         ":attributeは:value以下でなければなりません。",
		"lte.string":          ":attributeは:value文字以下で指定してください。",
		"max.array":           ":attributeは:max個以下で指定してください。",
		"max.numeric":         ":attributeは:max以下で指定してください。",
		"max.string":          ":attributeは:max文字以下で指定してください。",
		"min.array":           ":attributeは:min個以上指定してください。",
		"min.numeric":         ":attributeは:min以上で指定してください。",
		"min.string":          ":attributeは:min文字以上で指定してください。",
		"not_in":              "選択された:attributeは正しくありません。",
		"not_regex":           ":attributeの形式が正しくありません。",
		"numeric":             ":attributeは数値で指定してください。",
		"present":             ":attributeが存在しません。",
		"regex":               ":attributeの形式が正しくありません。",
		"required":            ":attributeは必須です。",
		"required_array_keys": ":attributeには次の項目が必要です: :values",
		"required_if":         ":otherが:valueの場合、:attributeは必須です。",
		"required_with":       ":valuesが存在する場合、:attributeは必須です。",
		"same":                ":attributeと:otherが一致しません。",
		"size.array":          ":attributeは:size個で指定してください。",
		"size.numeric":        ":attributeは:sizeで指定してください。",
		"size.string":         ":attributeは:size文字で指定してください。",
		"starts_with":         ":attributeは次のいずれかで始まる必要があります: :values",
		"string":              ":attributeは文字列で指定してください。",
		"url":                 ":attributeは有効なURLではありません。",
		"uuid":                ":attributeは有効なUUIDではありません。",
	},
	"zh": {
		"accepted":            "您必须接受 :attribute。",
		"accepted_if":         "当 :other 为 :value 时，必须接受 :attribute。",
		"alpha":               ":attribute 只能包含字母。",
		"alpha_dash":          ":attribute 只能包含字母、数字、短划线和下划线。",
		"alpha_num":           ":attribute 只能包含字母和数字。",
		"array":               ":attribute 必须是一个数组。",
		"between.array":       ":attribute 必须只有 :min - :max 个单元。",
		"between.numeric":     ":attribute 必须介于 :min - :max 之间。",
		"between.string":      ":attribute 必须介于 :min - :max 个字符之间。",
		"boolean":             ":attribute 必须为布尔值。",
		"date":                ":attribute 不是一个有效的日期。",
		"date_format":         ":attribute 的格式必须为 :format。",
		"declined":            ":attribute 必须是拒绝的。",
		"different":           ":attribute 和 :other 必须不同。",
		"digits":              ":attribute 必须是 :digits 位数字。",
		"digits_between":      ":attribute 必须是介于 :min 和 :max 位的数字。",
		"email":               ":attribute 不是一个合法的邮箱。",
		"ends_with":           ":attribute 必须以 :values 为结尾。",
		"filled":              ":attribute 不能为空。",
		"gt.array":            ":attribute 必须多于 :value 个元素。",
		"gt.numeric":          ":attribute 必须大于 :value。",
		"gt.string":           ":attribute 必须多于 :value 个字符。",
		"gte.array":           ":attribute 必须多于或等于 :value 个元素。",
		"gte.numeric":         ":attribute 必须大于或等于 :value。",
		"gte.string":          ":attribute 必须多于或等于 :value 个字符。",
		"in":                  "已选的属性 :attribute 无效。",
		"integer":             ":attribute 必须是整数。",
		"json":                ":attribute 必须是正确的 JSON 格式。",
		"lt.array":            ":attribute 必须少于 :value 个元素。",
		"lt.numeric":          ":attribute 必须小于 :value。",
		"lt.string":           ":attribute 必须少于 :value 个字符。",
		"lte.array":           ":attribute 必须少于或等于 :value 个元素。",
		"lte.numeric":         ":attribute 必须小于或等于 :value。",
		"lte.string":          ":attribute 必须少于或等于 :value 个字符。",
		"max.array":           ":attribute 最多只有 :max 个单元。",
		"max.numeric":         ":attribute 不能大于 :max。",
		"max.string":          ":attribute 不能大于 :max 个字符。",
		"min.array":           ":attribute 至少有 :min 个单元。",
		"min.numeric":         ":attribute 必须大于等于 :min。",
		"min.string":          ":attribute 至少为 :min 个字符。",
		"not_in":              "已选的属性 :attribute 非法。",
		"not_regex":           ":attribute 的格式错误。",
		"numeric":             ":attribute 必须是一个数字。",
		"present":             ":attribute 必须存在。",
		"regex":               ":attribute 格式不正确。",
		"required":            ":attribute 不能为空。",
		"required_array_keys": ":attribute 至少包含指定的键：:values。",
		"required_if":         "当 :other 为 :value 时 :attribute 不能为空。",
		"required_with":       "当 :values 存在时 :attribute 不能为空。",
		"same":                ":attribute 和 :other 必须相同。",
		"size.array":          ":attribute 必须为 :size 个单元。",
		"size.numeric":        ":attribute 大小必须为 :size。",
		"size.string":         ":attribute 必须是 :size 个字符。",
		"starts_with":         ":attribute 必须以 :values 为开头。",
		"string":              ":attribute 必须是一个字符串。",
		"url":                 ":attribute 格式不正确。",
		"uuid":                ":attribute 必须是有效的 UUID。",
	},
}
