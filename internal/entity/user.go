// Structure of User Model in Eventide.

package entity

// Saved in DB as user:<this.Username>
type User struct {
	Username string `json:"username" redis:"username" valid:"required,type(string),printableascii,stringlength(5|20),nospace~username:No spaces allowed here"`
	FullName string `json:"full_name,omitempty" redis:"full_name" valid:"type(string),stringlength(5|30),ascii,fullname_custom~full_name:Couldn't validate Full Name,optional"`
	Password string `json:"password,omitempty" redis:"password" valid:"required,type(string),minstringlength(5),pwdstrength~password:At least 1 letter and 1 number is mandatory"`
	IsGuest  bool   `json:"is_guest" redis:"is_guest" valid:"-"`
}

// Credentials received during login, subset of User.
type UserLogin struct {
	Username string `json:"username" valid:"required,type(string),printableascii,stringlength(5|20),nospace~username:No spaces allowed here"`
	Password string `json:"password" valid:"required,type(string),minstringlength(5)"`
}
